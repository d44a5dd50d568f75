package model

// RiskLevel is the triage outcome stated by the model. The zero value means
// the level is not applicable to the module that produced the result; a
// parse failure never yields a result at all.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// RetrievedCase is one vector-search hit, discarded after prompt
// construction.
type RetrievedCase struct {
	Text     string
	Score    float64
	SourceID string
}

// Citation points a caller back at the passage an answer leaned on.
type Citation struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Source   string  `json:"source"`
	Score    float64 `json:"score"`
}

// StructuredResult is the parsed, validated output of one request. Every
// field is either populated or explicitly marked absent; the risk/diagnosis
// field is never defaulted.
type StructuredResult struct {
	// Answer carries the Q&A answer or the diagnosis label.
	Answer string `json:"answer"`

	// Risk is set by the triage module only.
	Risk RiskLevel `json:"risk,omitempty"`

	// Probability (triage) or Confidence (diagnosis) in percent.
	// HasProbability distinguishes "0%" from "not stated".
	Probability    float64 `json:"probability"`
	HasProbability bool    `json:"has_probability"`

	Reasoning string   `json:"reasoning"`
	Tests     []string `json:"tests,omitempty"`

	// Citations keep retrieval order.
	Citations []Citation `json:"citations,omitempty"`

	Model     string  `json:"model"`
	LatencyMS float64 `json:"latency_ms"`
}
