package vector

import (
	"context"
)

// Point is one search hit with its stored payload.
type Point struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// Searcher is the narrow contract the core needs from a vector database.
type Searcher interface {
	Search(ctx context.Context, vector []float32, collection string, topK int) ([]Point, error)
}
