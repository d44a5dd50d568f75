package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/replicate/replicate-go"
)

// ReplicateClient serves the open models (Llama 3 8B/70B, Mistral 7B) hosted
// on Replicate. Output arrives as token chunks that are joined back together.
type ReplicateClient struct {
	client  *replicate.Client
	modelID string
	version string
	params  Params
}

func NewReplicateClient(apiToken, modelID, version string, params Params) (*ReplicateClient, error) {
	// Tokens pasted into .env files tend to pick up stray whitespace.
	client, err := replicate.NewClient(replicate.WithToken(strings.TrimSpace(apiToken)))
	if err != nil {
		return nil, fmt.Errorf("failed to create replicate client: %w", err)
	}
	return &ReplicateClient{
		client:  client,
		modelID: modelID,
		version: version,
		params:  params,
	}, nil
}

func (c *ReplicateClient) Generate(ctx context.Context, prompt string) (string, error) {
	identifier := c.modelID
	if c.version != "" {
		identifier = fmt.Sprintf("%s:%s", c.modelID, c.version)
	}

	input := replicate.PredictionInput{
		"prompt":      prompt,
		"max_tokens":  c.params.MaxTokens,
		"temperature": c.params.Temperature,
		"top_p":       c.params.TopP,
	}

	output, err := c.client.Run(ctx, identifier, input, nil)
	if err != nil {
		return "", err
	}

	return joinChunks(output), nil
}

func joinChunks(output replicate.PredictionOutput) string {
	switch v := output.(type) {
	case string:
		return v
	case []interface{}:
		var b strings.Builder
		for _, chunk := range v {
			if s, ok := chunk.(string); ok {
				b.WriteString(s)
			}
		}
		return b.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
