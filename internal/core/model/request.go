package model

// ChatRequest asks the Q&A module a free-text medical question.
type ChatRequest struct {
	Question string `json:"question"`
	Model    string `json:"model"`
	UseRAG   bool   `json:"use_rag"`
}

// RiskRequest asks the triage module to score a patient presentation.
type RiskRequest struct {
	Complaint string  `json:"complaint"`
	Vitals    *Vitals `json:"vitals"`
	Model     string  `json:"model"`
}

// SymptomRequest asks the symptom module for a diagnosis with explanation.
type SymptomRequest struct {
	Symptoms []string `json:"symptoms"`
	Model    string   `json:"model"`
}
