// Package parse maps raw model text into StructuredResults. Parsers are
// tolerant of case, whitespace and section order, but fail loudly when the
// safety-relevant field cannot be located; a risk level is never defaulted.
package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/genmedx/genmedx/internal/core/fault"
	"github.com/genmedx/genmedx/internal/core/model"
)

var (
	htmlTagRe = regexp.MustCompile(`<[^>]+>`)
	boldRe    = regexp.MustCompile(`\*\*(.*?)\*\*`)

	riskRe      = regexp.MustCompile(`(?i)RISK[_ ]?LEVEL\s*:\s*\**\s*\[?\s*(High|Medium|Low)`)
	riskBadgeRe = regexp.MustCompile(`(?i)\b(HIGH|MEDIUM|LOW)\s+RISK\b`)
	probRe      = regexp.MustCompile(`(?i)PROBABILITY\s*:\s*\**\s*\[?\s*(\d+(?:\.\d+)?)\s*%?`)
	reasoningRe = regexp.MustCompile(`(?is)REASONING\s*:\s*(.*?)(?:\n\s*(?:TESTS|RISK[_ ]?LEVEL|PROBABILITY)\s*:|\z)`)
	testsRe     = regexp.MustCompile(`(?is)TESTS\s*:\s*\[?(.*?)\]?(?:\n\s*(?:RISK[_ ]?LEVEL|PROBABILITY|REASONING)\s*:|\z)`)

	diagnosisRe   = regexp.MustCompile(`(?im)^\s*\**\s*Diagnosis\s*:?\**\s*(.+)$`)
	confidenceRe  = regexp.MustCompile(`(?i)Confidence\s*:?\**\s*(\d+(?:\.\d+)?)\s*%`)
	explanationRe = regexp.MustCompile(`(?is)Explanation\s*:\**\s*(.*)\z`)
)

// Risk extracts the triage sections from the model's semi-structured output.
// HTML badges around the risk level are stripped first; the risk level
// itself is mandatory.
func Risk(raw string) (*model.StructuredResult, error) {
	text := htmlTagRe.ReplaceAllString(raw, " ")

	level, ok := riskLevel(text)
	if !ok {
		return nil, &fault.ParseError{Field: "risk_level", Raw: raw}
	}

	result := &model.StructuredResult{Risk: level}

	if m := probRe.FindStringSubmatch(text); m != nil {
		if p, err := strconv.ParseFloat(m[1], 64); err == nil {
			result.Probability = p
			result.HasProbability = true
		}
	}

	if m := reasoningRe.FindStringSubmatch(text); m != nil {
		result.Reasoning = cleanReasoning(m[1])
	}

	if m := testsRe.FindStringSubmatch(text); m != nil {
		for _, t := range strings.Split(m[1], ",") {
			if t = strings.TrimSpace(t); t != "" {
				result.Tests = append(result.Tests, t)
			}
		}
	}

	return result, nil
}

func riskLevel(text string) (model.RiskLevel, bool) {
	if m := riskRe.FindStringSubmatch(text); m != nil {
		return canonicalLevel(m[1]), true
	}
	// Space frontends wrap the level in a badge ("HIGH RISK") with no
	// RISK_LEVEL label; accept that form too.
	if m := riskBadgeRe.FindStringSubmatch(text); m != nil {
		return canonicalLevel(m[1]), true
	}
	return "", false
}

func canonicalLevel(s string) model.RiskLevel {
	switch strings.ToLower(s) {
	case "high":
		return model.RiskHigh
	case "medium":
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// cleanReasoning drops chat scaffolding the smaller models like to emit.
func cleanReasoning(s string) string {
	s = strings.ReplaceAll(s, "Response:", "")
	s = regexp.MustCompile(`(?is)TESTS\s*:.*`).ReplaceAllString(s, "")
	s = regexp.MustCompile(`^[\-\*\d\.]+\s*`).ReplaceAllString(strings.TrimSpace(s), "")
	return strings.TrimSpace(s)
}

// Symptom extracts diagnosis, confidence and explanation from the markdown
// the fine-tuned space returns. The diagnosis label is mandatory.
func Symptom(raw string) (*model.StructuredResult, error) {
	m := diagnosisRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, &fault.ParseError{Field: "diagnosis", Raw: raw}
	}
	diagnosis := strings.TrimSpace(strings.Trim(m[1], "*"))
	if diagnosis == "" {
		return nil, &fault.ParseError{Field: "diagnosis", Raw: raw}
	}

	result := &model.StructuredResult{Answer: diagnosis}

	if m := confidenceRe.FindStringSubmatch(raw); m != nil {
		if p, err := strconv.ParseFloat(m[1], 64); err == nil {
			result.Probability = p
			result.HasProbability = true
		}
	}

	if m := explanationRe.FindStringSubmatch(raw); m != nil {
		result.Reasoning = strings.TrimSpace(htmlTagRe.ReplaceAllString(m[1], " "))
	} else {
		result.Reasoning = explanationFallback(raw)
	}

	return result, nil
}

// explanationFallback takes the free text after the labelled lines when no
// Explanation section is marked.
func explanationFallback(raw string) string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		plain := boldRe.ReplaceAllString(line, "$1")
		lower := strings.ToLower(strings.TrimSpace(plain))
		if strings.HasPrefix(lower, "diagnosis") || strings.HasPrefix(lower, "confidence") || strings.HasPrefix(lower, "symptoms") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// Answer validates the free-text Q&A output.
func Answer(raw string) (*model.StructuredResult, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimSpace(strings.TrimPrefix(text, "Answer:"))
	if text == "" {
		return nil, &fault.ParseError{Field: "answer", Raw: raw}
	}
	return &model.StructuredResult{Answer: text}, nil
}
