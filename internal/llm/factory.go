package llm

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/genmedx/genmedx/internal/config"
)

// NewClient builds the backend for one configured model entry and wraps it
// with the retry policy. API keys are resolved from the environment by the
// name the config references; the key itself never travels further than the
// provider SDK.
func NewClient(ctx context.Context, id string, mc config.ModelConfig, cfg *config.Config) (Client, error) {
	params := Params{
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		TopP:        cfg.Generation.TopP,
	}
	policy := RetryPolicy{
		Timeout:    time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		MaxRetries: uint64(cfg.LLM.MaxRetries),
		Backoff:    500 * time.Millisecond,
	}

	apiKey := ""
	if mc.APIKeyEnv != "" {
		apiKey = os.Getenv(mc.APIKeyEnv)
		if apiKey == "" && mc.Provider != "space" {
			return nil, fmt.Errorf("model %s: environment variable %s is not set", id, mc.APIKeyEnv)
		}
	}

	var inner Client
	switch strings.ToLower(mc.Provider) {
	case "openai":
		inner = NewOpenAIClient(apiKey, mc.ModelID, mc.BaseURL, params)

	case "gemini":
		c, err := NewGeminiClient(ctx, apiKey, mc.ModelID, params)
		if err != nil {
			return nil, err
		}
		inner = c

	case "claude":
		inner = NewClaudeClient(apiKey, mc.ModelID, mc.BaseURL, params)

	case "replicate":
		c, err := NewReplicateClient(apiKey, mc.ModelID, mc.Version, params)
		if err != nil {
			return nil, err
		}
		inner = c

	case "space":
		inner = NewSpaceClient(mc.BaseURL, mc.APIName)

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", mc.Provider)
	}

	return WithRetry(inner, mc.Provider+"/"+mc.ModelID, policy), nil
}

// NewEmbedder builds the configured embedding backend with the same retry
// policy as the generators.
func NewEmbedder(ctx context.Context, cfg *config.Config) (Embedder, error) {
	ec := cfg.Embedding
	policy := RetryPolicy{
		Timeout:    time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		MaxRetries: uint64(cfg.LLM.MaxRetries),
		Backoff:    500 * time.Millisecond,
	}

	apiKey := ""
	if ec.APIKeyEnv != "" {
		apiKey = os.Getenv(ec.APIKeyEnv)
	}

	var inner Embedder
	switch strings.ToLower(ec.Provider) {
	case "openai":
		inner = NewOpenAIEmbedder(apiKey, ec.Model, ec.BaseURL)

	case "gemini":
		e, err := NewGeminiEmbedder(ctx, apiKey, ec.Model)
		if err != nil {
			return nil, err
		}
		inner = e

	case "hf":
		inner = NewHFEmbedder(apiKey, ec.Model, ec.BaseURL)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", ec.Provider)
	}

	return WithEmbedRetry(inner, "embedding/"+ec.Model, policy), nil
}

// NewRegistry constructs every configured model up front. A model whose key
// is missing is skipped with a warning so one absent provider key does not
// take the whole service down; only losing the default model is fatal.
func NewRegistry(ctx context.Context, cfg *config.Config) (map[string]Client, error) {
	registry := make(map[string]Client, len(cfg.LLM.Models))
	for id, mc := range cfg.LLM.Models {
		c, err := NewClient(ctx, id, mc, cfg)
		if err != nil {
			log.Printf("skipping model %s: %v", id, err)
			continue
		}
		registry[id] = c
	}
	if _, ok := registry[cfg.LLM.DefaultModel]; !ok {
		return nil, fmt.Errorf("default model %s unavailable", cfg.LLM.DefaultModel)
	}
	return registry, nil
}
