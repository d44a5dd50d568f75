// Package core orchestrates the three assistant operations: retrieval-
// augmented Q&A, triage risk assessment, and symptom diagnosis. Each request
// runs its upstream calls sequentially and shares nothing mutable with other
// requests beyond the read-only configuration.
package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/genmedx/genmedx/internal/config"
	"github.com/genmedx/genmedx/internal/core/fault"
	"github.com/genmedx/genmedx/internal/core/model"
	"github.com/genmedx/genmedx/internal/core/parse"
	"github.com/genmedx/genmedx/internal/core/prompt"
	"github.com/genmedx/genmedx/internal/core/retrieve"
	"github.com/genmedx/genmedx/internal/llm"
	"github.com/genmedx/genmedx/internal/metrics"
)

type Agent struct {
	Models    map[string]llm.Client
	Retriever *retrieve.Retriever
	Builder   *prompt.Builder
	Metrics   *metrics.Tracker
	Cfg       *config.Config
}

func NewAgent(models map[string]llm.Client, retriever *retrieve.Retriever, builder *prompt.Builder, tracker *metrics.Tracker, cfg *config.Config) *Agent {
	return &Agent{
		Models:    models,
		Retriever: retriever,
		Builder:   builder,
		Metrics:   tracker,
		Cfg:       cfg,
	}
}

// AnswerQuestion serves the medical Q&A module: embed, search, prompt,
// generate, parse. With RAG enabled an empty retrieval fails fast; an
// ungrounded answer must not look verified.
func (a *Agent) AnswerQuestion(ctx context.Context, req model.ChatRequest) (result *model.StructuredResult, err error) {
	start := time.Now()
	reqID := shortID()
	defer func() { a.track("Medical Chatbot", start, err) }()

	if strings.TrimSpace(req.Question) == "" {
		return nil, &fault.ValidationError{Field: "question", Reason: "missing"}
	}

	modelID, client, err := a.resolveModel(req.Model)
	if err != nil {
		return nil, err
	}

	var passages []model.RetrievedCase
	var citations []model.Citation
	if req.UseRAG {
		passages, citations, err = a.Retriever.Retrieve(ctx, req.Question, a.Cfg.Qdrant.Collection)
		if err != nil {
			return nil, err
		}
	}

	p, err := a.Builder.QA(req.Question, passages)
	if err != nil {
		return nil, err
	}

	log.Printf("[%s] chat model=%s rag=%t passages=%d", reqID, modelID, req.UseRAG, len(passages))
	raw, err := client.Generate(ctx, p)
	if err != nil {
		return nil, err
	}

	result, err = parse.Answer(raw)
	if err != nil {
		return nil, err
	}
	result.Citations = citations
	result.Model = modelID
	result.LatencyMS = msSince(start)
	return result, nil
}

// AssessRisk serves the triage module. Input is validated before anything
// billable runs; similar past cases are advisory, so an empty triage
// collection does not abort the assessment.
func (a *Agent) AssessRisk(ctx context.Context, req model.RiskRequest) (result *model.StructuredResult, err error) {
	start := time.Now()
	reqID := shortID()
	defer func() { a.track("Risk Analysis", start, err) }()

	if strings.TrimSpace(req.Complaint) == "" {
		return nil, &fault.ValidationError{Field: "complaint", Reason: "missing"}
	}
	if err = req.Vitals.Validate(); err != nil {
		return nil, err
	}

	modelID, client, err := a.resolveModel(req.Model)
	if err != nil {
		return nil, err
	}

	similar, citations, err := a.Retriever.Retrieve(ctx, req.Complaint, a.Cfg.Qdrant.TriageCollection)
	if err != nil {
		if !fault.IsNoContext(err) {
			return nil, err
		}
		similar, citations = nil, nil
	}

	p, err := a.Builder.Risk(req.Complaint, req.Vitals, similar)
	if err != nil {
		return nil, err
	}

	log.Printf("[%s] risk model=%s cases=%d", reqID, modelID, len(similar))
	raw, err := client.Generate(ctx, p)
	if err != nil {
		return nil, err
	}

	result, err = parse.Risk(raw)
	if err != nil {
		return nil, err
	}
	result.Citations = citations
	result.Model = modelID
	result.LatencyMS = msSince(start)
	return result, nil
}

// Diagnose serves the symptom module: classify first, then explain. When the
// first response already carries an explanation the second call is skipped.
func (a *Agent) Diagnose(ctx context.Context, req model.SymptomRequest) (result *model.StructuredResult, err error) {
	start := time.Now()
	reqID := shortID()
	defer func() { a.track("Symptom Checker", start, err) }()

	modelID, client, err := a.resolveModel(req.Model)
	if err != nil {
		return nil, err
	}

	p, err := a.Builder.Symptom(req.Symptoms)
	if err != nil {
		return nil, err
	}

	log.Printf("[%s] symptom model=%s symptoms=%d", reqID, modelID, len(req.Symptoms))
	raw, err := client.Generate(ctx, p)
	if err != nil {
		return nil, err
	}

	result, err = parse.Symptom(raw)
	if err != nil {
		return nil, err
	}

	if result.Reasoning == "" {
		explanation, expErr := a.explain(ctx, client, result.Answer, req.Symptoms)
		if expErr != nil {
			return nil, expErr
		}
		result.Reasoning = explanation
	}

	result.Model = modelID
	result.LatencyMS = msSince(start)
	return result, nil
}

func (a *Agent) explain(ctx context.Context, client llm.Client, diagnosis string, symptoms []string) (string, error) {
	p := fmt.Sprintf(`A patient reports the following symptoms: %s.
The predicted condition is %s.

Explain in 3-4 patient-friendly sentences why these symptoms point to this condition and what a sensible next step is.
Do not mention age, gender, or demographics. Refer only to "the patient".`,
		prompt.Sanitize(strings.Join(symptoms, ", ")), prompt.Sanitize(diagnosis))

	raw, err := client.Generate(ctx, p)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

func (a *Agent) resolveModel(id string) (string, llm.Client, error) {
	resolved, _, err := a.Cfg.Model(id)
	if err != nil {
		return "", nil, &fault.ValidationError{Field: "model", Reason: err.Error()}
	}
	client, ok := a.Models[resolved]
	if !ok {
		return "", nil, &fault.ValidationError{Field: "model", Reason: "not configured: " + resolved}
	}
	return resolved, client, nil
}

func (a *Agent) track(module string, start time.Time, err error) {
	if a.Metrics == nil {
		return
	}
	msg := ""
	if err != nil {
		msg = err.Error()
		var ue *fault.UpstreamError
		if errors.As(err, &ue) {
			msg = fmt.Sprintf("upstream %s failed", ue.Dependency)
		}
	}
	a.Metrics.LogInference(module, time.Since(start), msg)
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

func shortID() string {
	return uuid.New().String()[:8]
}
