package models

import (
	"time"

	"gorm.io/datatypes"
)

// GenerationStatus is the realized outcome of one generation call. The UI
// layer additionally shows a transient PENDING state that is never persisted.
type GenerationStatus = string

const (
	GenerationStatusSuccess GenerationStatus = "SUCCESS"
	GenerationStatusError   GenerationStatus = "ERROR"
)

// GenerationRequest is one submitted generation call. Rows are append-only:
// created together with their result, never mutated, only deleted.
type GenerationRequest struct {
	ID             string         `gorm:"primarykey" json:"id"`
	PromptID       *uint          `gorm:"index" json:"prompt_id,omitempty"`
	Models         datatypes.JSON `json:"models"`
	ParamsOverride string         `gorm:"type:text" json:"params_override,omitempty"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`

	Prompt  *Prompt            `gorm:"foreignKey:PromptID;constraint:OnDelete:SET NULL" json:"prompt,omitempty"`
	Results []GenerationResult `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"results,omitempty"`
}

// GenerationResult is a realized outcome owned by exactly one request.
// ParamsUsed is a best-effort archive: it is hard-truncated on write and may
// not re-parse (see TruncateParamsUsed).
type GenerationResult struct {
	ID         string    `gorm:"primarykey" json:"id"`
	RequestID  string    `gorm:"index;not null" json:"request_id"`
	ModelID    string    `json:"model_id"`
	Status     string    `gorm:"index" json:"status"`
	ImageURL   string    `json:"image_url,omitempty"`
	ParamsUsed string    `gorm:"type:text" json:"params_used,omitempty"`
	ElapsedMs  *int64    `json:"elapsed_ms,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`

	Request *GenerationRequest `gorm:"foreignKey:RequestID" json:"request,omitempty"`
}
