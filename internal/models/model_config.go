package models

import (
	"time"

	"gorm.io/datatypes"
)

// ModelConfig describes one configured text-to-image model. The pair
// (provider, modelName) is the import de-duplication key; it is enforced
// procedurally during import, not as a DB constraint.
type ModelConfig struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Provider  string         `gorm:"index;not null" json:"provider"`
	ModelName string         `gorm:"not null" json:"model_name"`
	APIKeyRef string         `json:"api_key_ref,omitempty"`
	Defaults  datatypes.JSON `json:"defaults"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
