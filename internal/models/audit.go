package models

import (
	"time"

	"github.com/google/uuid"
)

type Flow string

const (
	FlowAnalyze Flow = "analyze"
	FlowImprove Flow = "improve"
)

// RequestAudit records how a request went. It never holds résumé text or
// model output.
type RequestAudit struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Flow          Flow      `gorm:"type:text;not null" json:"flow"`
	Outcome       string    `gorm:"type:text;not null" json:"outcome"`
	Provider      string    `gorm:"type:text" json:"provider"`
	Model         string    `gorm:"type:text" json:"model"`
	FileExtension string    `gorm:"type:text" json:"file_extension,omitempty"`
	SizeBytes     int64     `json:"size_bytes,omitempty"`
	PageCount     int       `json:"page_count,omitempty"`
	DurationMs    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

func (RequestAudit) TableName() string {
	return "request_audits"
}
