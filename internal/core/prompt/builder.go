// Package prompt renders the exact text sent to the remote models. Rendering
// is deterministic: same inputs, same prompt, no hidden randomness.
package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/genmedx/genmedx/internal/config"
	"github.com/genmedx/genmedx/internal/core/fault"
	"github.com/genmedx/genmedx/internal/core/model"
)

type Builder struct {
	Prompts       config.Prompts
	ContextBudget int // max runes of retrieved context interpolated per prompt
}

func NewBuilder(prompts config.Prompts, contextBudget int) *Builder {
	if contextBudget <= 0 {
		contextBudget = 6000
	}
	if prompts.QAPlain == "" {
		prompts.QAPlain = "Question: %s\n\nAnswer:"
	}
	return &Builder{Prompts: prompts, ContextBudget: contextBudget}
}

// QA renders the Q&A prompt. With passages it uses the retrieval-augmented
// template, truncating the context to the budget; without passages it falls
// back to the plain template, whose instructions carry no grounding rules
// that would steer the model into refusing. The question is inserted
// verbatim apart from delimiter neutralization.
func (b *Builder) QA(question string, passages []model.RetrievedCase) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", &fault.ValidationError{Field: "question", Reason: "missing"}
	}

	if len(passages) == 0 {
		return fmt.Sprintf(b.Prompts.QAPlain, Sanitize(question)), nil
	}

	var parts []string
	for i, p := range passages {
		parts = append(parts, fmt.Sprintf("[Source %d] %s", i+1, Sanitize(p.Text)))
	}
	context := truncateRunes(strings.Join(parts, "\n\n"), b.ContextBudget)

	return fmt.Sprintf(b.Prompts.QA, context, Sanitize(question)), nil
}

// Risk renders the triage prompt. The template walks the model through a
// fixed verification order before it may state a risk level: echo each vital
// with its value, state the accepted normal range, mark it in or out of
// range, and only then conclude.
func (b *Builder) Risk(complaint string, vitals *model.Vitals, similar []model.RetrievedCase) (string, error) {
	if strings.TrimSpace(complaint) == "" {
		return "", &fault.ValidationError{Field: "complaint", Reason: "missing"}
	}
	if err := vitals.Validate(); err != nil {
		return "", err
	}

	vitalsLine := fmt.Sprintf(
		"Temperature=%.1f°F, Heart Rate=%.0fbpm, Respiratory Rate=%.0f/min, O2 Saturation=%.0f%%, Blood Pressure=%.0f/%.0fmmHg, Pain=%.0f/10",
		*vitals.Temperature, *vitals.HeartRate, *vitals.RespRate,
		*vitals.O2Sat, *vitals.SBP, *vitals.DBP, vitals.PainScore())

	var caseParts []string
	for i, c := range similar {
		caseParts = append(caseParts, fmt.Sprintf("Case %d (match %.0f%%):\n%s", i+1, c.Score*100, Sanitize(c.Text)))
	}
	cases := "No similar cases found."
	if len(caseParts) > 0 {
		cases = truncateRunes(strings.Join(caseParts, "\n\n"), b.ContextBudget)
	}

	return fmt.Sprintf(b.Prompts.Risk,
		Sanitize(complaint),
		vitalsLine,
		Assessment(vitals),
		Alerts(vitals),
		cases,
	), nil
}

// Symptom renders the diagnosis prompt from an ordered symptom list.
func (b *Builder) Symptom(symptoms []string) (string, error) {
	var cleaned []string
	for _, s := range symptoms {
		if t := strings.TrimSpace(s); t != "" {
			cleaned = append(cleaned, Sanitize(t))
		}
	}
	if len(cleaned) == 0 {
		return "", &fault.ValidationError{Field: "symptoms", Reason: "missing"}
	}

	return fmt.Sprintf(b.Prompts.Symptom, strings.Join(cleaned, ", ")), nil
}

// Structural delimiters of the templates. Interpolated text may not contain
// them, or a crafted input could escape its section and rewrite the
// instructions the parser depends on.
var (
	instTokens = strings.NewReplacer("[INST]", "", "[/INST]", "")
	headerRe   = regexp.MustCompile(`(?im)^(\s*)(PATIENT DATA|ACCURATE VITAL SIGNS ASSESSMENT|CRITICAL ALERTS|SIMILAR PAST CASES|STRICT RULES|FORMAT|CONTEXT|QUESTION|INSTRUCTIONS|ANSWER)(\s*:)`)
)

// Sanitize neutralizes template delimiters in user-supplied text. The text
// is otherwise inserted verbatim; header-looking lines are quoted rather
// than removed so the content survives.
func Sanitize(s string) string {
	s = instTokens.Replace(s)
	return headerRe.ReplaceAllString(s, "${1}> ${2}${3}")
}

func truncateRunes(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget])
}
