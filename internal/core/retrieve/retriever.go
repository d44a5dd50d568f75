// Package retrieve turns a free-text query into grounded context: embed the
// query, search the vector store, map stored payloads into passages and
// citations.
package retrieve

import (
	"context"
	"fmt"
	"strings"

	"github.com/genmedx/genmedx/internal/core/fault"
	"github.com/genmedx/genmedx/internal/core/model"
	"github.com/genmedx/genmedx/internal/llm"
	"github.com/genmedx/genmedx/internal/vector"
)

type Retriever struct {
	Embedder llm.Embedder
	Searcher vector.Searcher
	Reranker llm.Reranker // optional
	TopK     int
}

func NewRetriever(embedder llm.Embedder, searcher vector.Searcher, reranker llm.Reranker, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{
		Embedder: embedder,
		Searcher: searcher,
		Reranker: reranker,
		TopK:     topK,
	}
}

// Retrieve returns the top passages for a query, in relevance order, or a
// NoContextError when the collection holds nothing relevant.
func (r *Retriever) Retrieve(ctx context.Context, query, collection string) ([]model.RetrievedCase, []model.Citation, error) {
	vec, err := r.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	points, err := r.Searcher.Search(ctx, vec, collection, r.TopK)
	if err != nil {
		return nil, nil, err
	}
	if len(points) == 0 {
		return nil, nil, &fault.NoContextError{Collection: collection}
	}

	cases := make([]model.RetrievedCase, 0, len(points))
	citations := make([]model.Citation, 0, len(points))
	for _, p := range points {
		cases = append(cases, model.RetrievedCase{
			Text:     formatPayload(p.Payload),
			Score:    p.Score,
			SourceID: p.ID,
		})
		citations = append(citations, citationFor(p))
	}

	if r.Reranker != nil {
		cases, citations = r.rerank(ctx, query, cases, citations)
	}

	return cases, citations, nil
}

func (r *Retriever) rerank(ctx context.Context, query string, cases []model.RetrievedCase, citations []model.Citation) ([]model.RetrievedCase, []model.Citation) {
	docs := make([]string, len(cases))
	for i, c := range cases {
		docs[i] = c.Text
	}
	indices, err := r.Reranker.Rank(ctx, query, docs)
	if err != nil || len(indices) == 0 {
		return cases, citations
	}

	orderedCases := make([]model.RetrievedCase, 0, len(cases))
	orderedCitations := make([]model.Citation, 0, len(citations))
	// Indices come from a Reranker implementation; out-of-range or repeated
	// ones are dropped rather than trusted.
	mentioned := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(cases) || mentioned[idx] {
			continue
		}
		mentioned[idx] = true
		orderedCases = append(orderedCases, cases[idx])
		orderedCitations = append(orderedCitations, citations[idx])
	}
	// Keep anything the model forgot to mention, in original order.
	for i := range cases {
		if !mentioned[i] {
			orderedCases = append(orderedCases, cases[i])
			orderedCitations = append(orderedCitations, citations[i])
		}
	}
	return orderedCases, orderedCitations
}

// Two payload schemas live in the store: medical Q&A pairs
// (question/answer/source) and triage cases (complaint/vitals/acuity).
func formatPayload(payload map[string]any) string {
	if _, isTriage := payload["complaint"]; isTriage {
		var vitals string
		if vm, ok := payload["vitals"].(map[string]any); ok {
			parts := make([]string, 0, len(vm))
			for k, v := range vm {
				s := fmt.Sprintf("%v", v)
				if s == "" || strings.EqualFold(s, "unknown") {
					continue
				}
				parts = append(parts, fmt.Sprintf("%s: %s", k, s))
			}
			vitals = strings.Join(parts, ", ")
		}
		return fmt.Sprintf("(Acuity: %v)\nComplaint: %v\nVitals: %s",
			stringOr(payload, "acuity", "Unknown"), payload["complaint"], vitals)
	}

	return fmt.Sprintf("(%s)\nQ: %s\nA: %s",
		stringOr(payload, "source", "Unknown"),
		stringOr(payload, "question", ""),
		stringOr(payload, "answer", ""))
}

func citationFor(p vector.Point) model.Citation {
	payload := p.Payload
	if _, isTriage := payload["complaint"]; isTriage {
		return model.Citation{
			Question: fmt.Sprintf("Complaint: %v", payload["complaint"]),
			Answer:   fmt.Sprintf("Acuity: %v | Vitals: %v", payload["acuity"], payload["vitals"]),
			Source:   fmt.Sprintf("MIMIC-IV Triage (Subject %v)", payload["subject_id"]),
			Score:    p.Score,
		}
	}
	return model.Citation{
		Question: stringOr(payload, "question", ""),
		Answer:   stringOr(payload, "answer", ""),
		Source:   stringOr(payload, "source", "Unknown"),
		Score:    p.Score,
	}
}

func stringOr(payload map[string]any, key, def string) string {
	if v, ok := payload[key]; ok && v != nil {
		if s := fmt.Sprintf("%v", v); s != "" {
			return s
		}
	}
	return def
}
