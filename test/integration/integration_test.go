//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genmedx/genmedx/internal/config"
	"github.com/genmedx/genmedx/internal/core"
	"github.com/genmedx/genmedx/internal/core/model"
	"github.com/genmedx/genmedx/internal/core/prompt"
	"github.com/genmedx/genmedx/internal/core/retrieve"
	"github.com/genmedx/genmedx/internal/llm"
	"github.com/genmedx/genmedx/internal/metrics"
	"github.com/genmedx/genmedx/internal/server"
	"github.com/genmedx/genmedx/internal/vector"
)

// TestFullFlow runs the real stack against live Qdrant and whichever model
// the config selects as default. Requires QDRANT_URL plus the default
// model's API key in the environment.
func TestFullFlow(t *testing.T) {
	_ = godotenv.Load("../../.env")

	cfg, err := config.Load("../../config/config.toml")
	require.NoError(t, err)
	cfg.ApplyEnvOverrides()

	if os.Getenv("QDRANT_URL") == "" && cfg.Qdrant.URL == "" {
		t.Skip("Skipping integration test: QDRANT_URL not set")
	}
	_, mc, err := cfg.Model("")
	require.NoError(t, err)
	if mc.APIKeyEnv != "" && os.Getenv(mc.APIKeyEnv) == "" {
		t.Skipf("Skipping integration test: %s not set", mc.APIKeyEnv)
	}
	if cfg.Embedding.APIKeyEnv != "" && os.Getenv(cfg.Embedding.APIKeyEnv) == "" {
		t.Skipf("Skipping integration test: %s not set", cfg.Embedding.APIKeyEnv)
	}

	ctx := context.Background()

	registry, err := llm.NewRegistry(ctx, cfg)
	require.NoError(t, err)
	embedder, err := llm.NewEmbedder(ctx, cfg)
	require.NoError(t, err)

	searcher := vector.NewQdrantClient(vector.QdrantConfig{
		URL:     cfg.Qdrant.URL,
		APIKey:  os.Getenv(cfg.Qdrant.APIKeyEnv),
		Timeout: time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
	})

	retriever := retrieve.NewRetriever(embedder, searcher, nil, cfg.RAG.TopK)
	builder := prompt.NewBuilder(cfg.Prompts, cfg.RAG.ContextBudget)
	tracker := metrics.NewTracker()

	s := &server.Server{
		Agent:   core.NewAgent(registry, retriever, builder, tracker, cfg),
		Metrics: tracker,
		Cfg:     cfg,
	}
	router := s.SetupRouter()

	// Step 1: grounded Q&A
	chatBody, _ := json.Marshal(model.ChatRequest{
		Question: "What are the symptoms of diabetes?",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(chatBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var chatResult model.StructuredResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chatResult))
	assert.NotEmpty(t, chatResult.Answer)
	assert.NotEmpty(t, chatResult.Citations)
	t.Logf("Chat answer: %s", chatResult.Answer)

	// Step 2: risk scoring on a tachycardic presentation
	f := func(v float64) *float64 { return &v }
	riskBody, _ := json.Marshal(model.RiskRequest{
		Complaint: "Chest pain and shortness of breath",
		Vitals: &model.Vitals{
			Temperature: f(98.6),
			HeartRate:   f(118),
			RespRate:    f(22),
			O2Sat:       f(93),
			SBP:         f(150),
			DBP:         f(95),
		},
	})
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/risk_predict", bytes.NewReader(riskBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var riskResult model.StructuredResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &riskResult))
	assert.Contains(t, []model.RiskLevel{model.RiskHigh, model.RiskMedium, model.RiskLow}, riskResult.Risk)
	assert.NotEmpty(t, riskResult.Reasoning)
	t.Logf("Risk: %s (%.0f%%)", riskResult.Risk, riskResult.Probability)

	// Step 3: metrics reflect both calls
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var snap metrics.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, int64(1), snap.Modules["Medical Chatbot"].Requests)
	assert.Equal(t, int64(1), snap.Modules["Risk Analysis"].Requests)
}
