package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/genmedx/genmedx/internal/config"
	"github.com/genmedx/genmedx/internal/core"
	"github.com/genmedx/genmedx/internal/core/fault"
	"github.com/genmedx/genmedx/internal/core/model"
	"github.com/genmedx/genmedx/internal/core/prompt"
	"github.com/genmedx/genmedx/internal/core/retrieve"
	"github.com/genmedx/genmedx/internal/llm"
	"github.com/genmedx/genmedx/internal/metrics"
	"github.com/genmedx/genmedx/internal/vector"
)

type Server struct {
	Agent   *core.Agent
	Metrics *metrics.Tracker
	Cfg     *config.Config
}

func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ApplyEnvOverrides()

	ctx := context.Background()

	registry, err := llm.NewRegistry(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize LLM clients: %v", err)
	}

	embedder, err := llm.NewEmbedder(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize embedder: %v", err)
	}

	searcher := vector.NewQdrantClient(vector.QdrantConfig{
		URL:     cfg.Qdrant.URL,
		APIKey:  os.Getenv(cfg.Qdrant.APIKeyEnv),
		Timeout: time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
	})

	var reranker llm.Reranker
	if cfg.RAG.Rerank {
		if _, mc, err := cfg.Model(""); err == nil {
			if c, err := llm.NewClient(ctx, cfg.LLM.DefaultModel, mc, cfg); err == nil {
				reranker = llm.NewSimpleLLMReranker(c)
			}
		}
	}

	retriever := retrieve.NewRetriever(embedder, searcher, reranker, cfg.RAG.TopK)
	builder := prompt.NewBuilder(cfg.Prompts, cfg.RAG.ContextBudget)
	tracker := metrics.NewTracker()

	return &Server{
		Agent:   core.NewAgent(registry, retriever, builder, tracker, cfg),
		Metrics: tracker,
		Cfg:     cfg,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/", s.Root)
	r.GET("/health", s.Health)
	r.GET("/models", s.ListModels)
	r.GET("/metrics", s.ShowMetrics)
	r.POST("/chat", s.Chat)
	r.POST("/risk_predict", s.RiskPredict)
	r.POST("/symptom_predict", s.SymptomPredict)

	return r
}

func (s *Server) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "GenMedX API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"chat":    "/chat",
			"risk":    "/risk_predict",
			"symptom": "/symptom_predict",
			"models":  "/models",
			"health":  "/health",
			"metrics": "/metrics",
		},
	})
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"models_loaded": len(s.Agent.Models),
		"rag_loaded":    s.Agent.Retriever != nil,
	})
}

func (s *Server) ListModels(c *gin.Context) {
	models := make([]gin.H, 0, len(s.Cfg.LLM.Models))
	for id, mc := range s.Cfg.LLM.Models {
		models = append(models, gin.H{
			"id":          id,
			"name":        mc.Name,
			"provider":    mc.Provider,
			"description": mc.Description,
			"default":     id == s.Cfg.LLM.DefaultModel,
		})
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

func (s *Server) ShowMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.Metrics.Snapshot())
}

func (s *Server) Chat(c *gin.Context) {
	var req model.ChatRequest
	req.UseRAG = true
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := s.Agent.AnswerQuestion(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) RiskPredict(c *gin.Context) {
	var req model.RiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := s.Agent.AssessRisk(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) SymptomPredict(c *gin.Context) {
	var req model.SymptomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := s.Agent.Diagnose(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// writeError maps the fault taxonomy onto status codes. A parse or upstream
// failure is never dressed up as a degraded answer.
func writeError(c *gin.Context, err error) {
	switch {
	case fault.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case fault.IsNoContext(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case fault.IsParse(err):
		log.Printf("parse failure: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case fault.IsUpstream(err):
		log.Printf("upstream failure: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
