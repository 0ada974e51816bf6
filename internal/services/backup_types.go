package services

import "time"

// BackupVersion is the one accepted backup document version. The contract is
// closed: any format evolution requires a new explicit version with matching
// import logic, there is no forward or backward migration.
const BackupVersion = 1

// BackupDocument is the versioned export/import interchange format.
type BackupDocument struct {
	Version           int                      `json:"version"`
	ExportedAt        time.Time                `json:"exportedAt"`
	StorageMode       string                   `json:"storageMode"`
	Scope             string                   `json:"scope"`
	Limits            BackupLimits             `json:"limits"`
	Prompts           []BackupPrompt           `json:"prompts"`
	Models            []BackupModelConfig      `json:"models"`
	GenerationResults []BackupGenerationResult `json:"generationResults"`
}

// BackupLimits accounts for truncation of the generation history slice.
type BackupLimits struct {
	GenerationResults      int   `json:"generationResults"`
	TotalGenerationResults int64 `json:"totalGenerationResults"`
	Truncated              bool  `json:"truncated"`
}

type BackupPrompt struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags"`
	Variables []string  `json:"variables"`
	Version   int       `json:"version"`
	Author    string    `json:"author,omitempty"`
	Link      string    `json:"link,omitempty"`
	Preview   string    `json:"preview,omitempty"`
	Category  string    `json:"category,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	// BestSample summarizes the most recent saved version:
	// "{modelId} · {sampleUrl}", or just the model id without a sample URL.
	BestSample string    `json:"bestSample,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type BackupModelConfig struct {
	ID        uint                   `json:"id"`
	Provider  string                 `json:"provider"`
	ModelName string                 `json:"modelName"`
	APIKeyRef string                 `json:"apiKeyRef,omitempty"`
	Defaults  map[string]interface{} `json:"defaults,omitempty"`
	// Resolution and SizePresets are convenience extractions from Defaults,
	// present only when the embedded values are well-typed.
	Resolution  string    `json:"resolution,omitempty"`
	SizePresets []string  `json:"sizePresets,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type BackupGenerationResult struct {
	ID         string        `json:"id"`
	RequestID  string        `json:"requestId"`
	ModelID    string        `json:"modelId"`
	Status     string        `json:"status"`
	ImageURL   string        `json:"imageUrl,omitempty"`
	ParamsUsed string        `json:"paramsUsed,omitempty"`
	ElapsedMs  *int64        `json:"elapsedMs,omitempty"`
	Error      string        `json:"error,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	Derived    DerivedParams `json:"derived"`
	Request    BackupRequest `json:"request"`
}

// DerivedParams mirrors the gallery projection so an importer can rebuild
// display fields without re-parsing blobs.
type DerivedParams struct {
	Prompt        string   `json:"prompt"`
	Size          string   `json:"size"`
	Model         string   `json:"model"`
	ModelIDs      []string `json:"modelIds"`
	HasImageInput bool     `json:"hasImageInput"`
	ImageInputURL string   `json:"imageInputUrl,omitempty"`
}

// BackupRequest carries the owning request verbatim for faithful
// round-tripping. PromptTitle, not PromptID, is what import resolves against.
type BackupRequest struct {
	PromptID       *uint     `json:"promptId,omitempty"`
	PromptTitle    string    `json:"promptTitle,omitempty"`
	Models         []string  `json:"models"`
	ParamsOverride string    `json:"paramsOverride,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// EntityStats counts one entity type's import outcome.
type EntityStats struct {
	Total    int `json:"total"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// ImportStats is returned for every import, whether or not anything was new.
type ImportStats struct {
	Prompts            EntityStats `json:"prompts"`
	Models             EntityStats `json:"models"`
	GenerationRequests EntityStats `json:"generationRequests"`
	GenerationResults  EntityStats `json:"generationResults"`
}
