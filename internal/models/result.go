package models

import "time"

type AnalyzeResponse struct {
	Text     string `json:"text"`
	Analysis string `json:"analysis"`
}

type ImproveRequest struct {
	OriginalResume string `json:"originalResume"`
	Suggestions    string `json:"suggestions"`
}

type ImproveResponse struct {
	ImprovedResume string `json:"improvedResume"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type ModelResponse struct {
	Model      string     `json:"model"`
	Source     string     `json:"source"`
	Provider   string     `json:"provider"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// AnalysisResult is what the analyze flow hands back to its callers.
type AnalysisResult struct {
	ExtractedText string
	Analysis      string
	Model         string
}

// ImprovedResumeResult is the output of the rewrite flow.
type ImprovedResumeResult struct {
	ImprovedResume string
	Model          string
}
