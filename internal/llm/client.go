package llm

import (
	"context"
)

// Client generates raw text for a fully-built prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder converts free text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Reranker orders documents by relevance to a query, returning indices into
// documents. Indices should be unique and in range, but callers treat the
// slice as untrusted model output and must tolerate violations.
type Reranker interface {
	Rank(ctx context.Context, query string, documents []string) ([]int, error)
}

// Params are the generation knobs shared by every backend.
type Params struct {
	Temperature float64
	MaxTokens   int
	TopP        float64
}
