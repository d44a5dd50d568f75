package core

import (
	"context"

	"github.com/genmedx/genmedx/internal/vector"
)

type MockClient struct {
	Response      string
	ResponseQueue []string
	Err           error
	GenerateCalls int
	LastPrompt    string
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.GenerateCalls++
	m.LastPrompt = prompt
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

type MockEmbedder struct {
	Vector     []float32
	Err        error
	EmbedCalls int
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.EmbedCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vector, nil
}

type MockSearcher struct {
	Points         []vector.Point
	Err            error
	SearchCalls    int
	LastCollection string
	LastTopK       int
}

func (m *MockSearcher) Search(ctx context.Context, vec []float32, collection string, topK int) ([]vector.Point, error) {
	m.SearchCalls++
	m.LastCollection = collection
	m.LastTopK = topK
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Points, nil
}
