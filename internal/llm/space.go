package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// httpError carries the upstream status so the retry policy can tell client
// errors from transient server failures. The response body is deliberately
// not echoed: it may restate request headers.
type httpError struct {
	status int
	url    string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.url, e.status)
}

func (e *httpError) StatusCode() int { return e.status }

// SpaceClient calls a Hugging Face Space through the gradio REST API. The
// Space hosts the fine-tuned BioMistral endpoints; it takes the rendered
// prompt as its single text input and returns markdown sections.
type SpaceClient struct {
	baseURL string
	apiName string
	client  *http.Client
}

func NewSpaceClient(baseURL, apiName string) *SpaceClient {
	if apiName == "" {
		apiName = "predict"
	}
	return &SpaceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiName: strings.TrimPrefix(apiName, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *SpaceClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{"data": []any{prompt}})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/run/%s", c.baseURL, c.apiName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", &httpError{status: resp.StatusCode, url: url}
	}

	var out struct {
		Data []any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode space response: %w", err)
	}
	if len(out.Data) == 0 {
		return "", fmt.Errorf("empty data from space")
	}

	// Spaces with multiple output components return one element per
	// component; join them so the parser sees every section.
	var parts []string
	for _, d := range out.Data {
		if s, ok := d.(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text output from space")
	}
	return strings.Join(parts, "\n"), nil
}

// HFEmbedder calls the Hugging Face Inference API feature-extraction
// pipeline for sentence-transformer models (all-MiniLM-L6-v2, 384 dims).
type HFEmbedder struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

func NewHFEmbedder(apiKey, model, baseURL string) *HFEmbedder {
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	if model == "" {
		model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	return &HFEmbedder{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HFEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(map[string]any{
		"inputs":  []string{text},
		"options": map[string]any{"wait_for_model": true},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/pipeline/feature-extraction/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, &httpError{status: resp.StatusCode, url: url}
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("no embedding values")
	}
	return vectors[0], nil
}
