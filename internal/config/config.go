package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ModelConfig describes one hosted LLM endpoint the router can select.
type ModelConfig struct {
	Name        string `toml:"name"`
	Provider    string `toml:"provider"` // openai | gemini | claude | replicate | space
	ModelID     string `toml:"model_id"`
	Version     string `toml:"version"`  // replicate version pin
	APIKeyEnv   string `toml:"api_key_env"`
	BaseURL     string `toml:"base_url"`
	APIName     string `toml:"api_name"` // gradio endpoint for space provider
	Description string `toml:"description"`
}

type LLMConfig struct {
	DefaultModel string                 `toml:"default_model"`
	TimeoutSecs  int                    `toml:"timeout_secs"`
	MaxRetries   int                    `toml:"max_retries"`
	Models       map[string]ModelConfig `toml:"models"`
}

type GenerationConfig struct {
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
	TopP        float64 `toml:"top_p"`
}

type QdrantConfig struct {
	URL              string `toml:"url"`
	APIKeyEnv        string `toml:"api_key_env"`
	Collection       string `toml:"collection"`
	TriageCollection string `toml:"triage_collection"`
	TimeoutSecs      int    `toml:"timeout_secs"`
}

type EmbeddingConfig struct {
	Provider  string `toml:"provider"` // openai | gemini | hf
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`
	BaseURL   string `toml:"base_url"`
	Dimension int    `toml:"dimension"`
}

type RAGConfig struct {
	TopK          int  `toml:"top_k"`
	ContextBudget int  `toml:"context_budget"` // max runes of retrieved context per prompt
	Rerank        bool `toml:"rerank"`
}

// Prompts are fmt templates with %s slots, rendered by the prompt builder.
type Prompts struct {
	QA      string `toml:"qa"`       // slots: context, question
	QAPlain string `toml:"qa_plain"` // slot: question; used when no context is supplied
	Risk    string `toml:"risk"`     // slots: complaint, vitals line, assessment, alerts, similar cases
	Symptom string `toml:"symptom"`  // slot: symptom list
}

type Config struct {
	LLM        LLMConfig        `toml:"llm"`
	Generation GenerationConfig `toml:"generation"`
	Qdrant     QdrantConfig     `toml:"qdrant"`
	Embedding  EmbeddingConfig  `toml:"embedding"`
	RAG        RAGConfig        `toml:"rag"`
	Prompts    Prompts          `toml:"prompts"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 2
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.ContextBudget == 0 {
		cfg.RAG.ContextBudget = 6000
	}
	if cfg.Qdrant.TimeoutSecs == 0 {
		cfg.Qdrant.TimeoutSecs = 15
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = 512
	}
	if cfg.Prompts.QAPlain == "" {
		cfg.Prompts.QAPlain = "Question: %s\n\nAnswer:"
	}
}

// ApplyEnvOverrides lets deployment environments replace file settings
// without editing the config. Only connection-level settings are
// overridable; prompts stay in the file.
func (cfg *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DEFAULT_MODEL"); v != "" {
		cfg.LLM.DefaultModel = v
	}
	if v := os.Getenv("QDRANT_URL"); v != "" {
		cfg.Qdrant.URL = v
	}
	if v := os.Getenv("QDRANT_COLLECTION"); v != "" {
		cfg.Qdrant.Collection = v
	}
	if v := os.Getenv("QDRANT_TRIAGE_COLLECTION"); v != "" {
		cfg.Qdrant.TriageCollection = v
	}
}

// Model resolves a caller-supplied model identifier, falling back to the
// configured default when the identifier is empty.
func (cfg *Config) Model(id string) (string, ModelConfig, error) {
	if id == "" {
		id = cfg.LLM.DefaultModel
	}
	mc, ok := cfg.LLM.Models[id]
	if !ok {
		return "", ModelConfig{}, fmt.Errorf("unknown model: %s", id)
	}
	return id, mc, nil
}
