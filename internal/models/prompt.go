package models

import (
	"time"

	"gorm.io/datatypes"
)

// Prompt is a reusable image-generation prompt. Title is the natural key:
// imports de-duplicate prompts by title, so it carries a unique index.
type Prompt struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Title     string         `gorm:"uniqueIndex;not null" json:"title"`
	Body      string         `gorm:"type:text" json:"body"`
	Tags      datatypes.JSON `json:"tags"`
	Variables datatypes.JSON `json:"variables"`
	Version   int            `gorm:"not null;default:1" json:"version"`
	Author    string         `json:"author,omitempty"`
	Link      string         `json:"link,omitempty"`
	Preview   string         `json:"preview,omitempty"`
	Category  string         `json:"category,omitempty"`
	Mode      string         `json:"mode,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	Versions []PromptVersion `gorm:"foreignKey:PromptID;constraint:OnDelete:CASCADE" json:"versions,omitempty"`
}

// PromptVersion records a saved iteration of a prompt together with the model
// it was sampled on. The most recent version feeds the export's bestSample.
type PromptVersion struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	PromptID  uint      `gorm:"index;not null" json:"prompt_id"`
	ModelID   string    `json:"model_id"`
	SampleURL string    `json:"sample_url"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
