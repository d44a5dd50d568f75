package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/genmedx/genmedx/internal/core/fault"
)

// QdrantClient is a minimal REST client to Qdrant Cloud. Collections are
// maintained elsewhere; this side only searches.
type QdrantClient struct {
	url    string
	apiKey string
	client *http.Client
}

type QdrantConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

func NewQdrantClient(cfg QdrantConfig) *QdrantClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &QdrantClient{
		url:    strings.TrimRight(cfg.URL, "/"),
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}
}

func (q *QdrantClient) Search(ctx context.Context, vector []float32, collection string, topK int) ([]Point, error) {
	if topK <= 0 {
		topK = 5
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}

	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", q.url, collection)
	if err := q.postJSON(ctx, url, body, &resp); err != nil {
		return nil, &fault.UpstreamError{Dependency: "qdrant", Err: err}
	}

	points := make([]Point, 0, len(resp.Result))
	for _, r := range resp.Result {
		points = append(points, Point{
			ID:      fmt.Sprintf("%v", r.ID),
			Score:   r.Score,
			Payload: r.Payload,
		})
	}
	return points, nil
}

func (q *QdrantClient) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		// Status only: the request carries the api-key header.
		return fmt.Errorf("qdrant POST failed: %s", resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
