package prompts

import "seedream-studio/internal/models"

type PromptRequest struct {
	Title     string   `json:"title" binding:"required"`
	Body      string   `json:"body"`
	Tags      []string `json:"tags"`
	Variables []string `json:"variables"`
	Author    string   `json:"author"`
	Link      string   `json:"link"`
	Preview   string   `json:"preview"`
	Category  string   `json:"category"`
	Mode      string   `json:"mode"`
}

type PromptListResponse struct {
	Prompts []models.Prompt `json:"prompts"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

type PromptVersionRequest struct {
	ModelID   string `json:"modelId" binding:"required"`
	SampleURL string `json:"sampleUrl"`
	Note      string `json:"note"`
}
