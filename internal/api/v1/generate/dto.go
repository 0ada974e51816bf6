package generate

type GenerateRequest struct {
	Prompt   string   `json:"prompt"`
	Size     string   `json:"size"`
	Model    string   `json:"model"`
	ModelIDs []string `json:"modelIds"`
	// Image accepts a single URL / data URI string or a list of them.
	Image interface{} `json:"image,omitempty"`
	// PromptID optionally links the call to a stored prompt.
	PromptID *uint `json:"promptId,omitempty"`
}

type GenerateResponse struct {
	URL       string `json:"url"`
	RequestID string `json:"requestId,omitempty"`
	ResultID  string `json:"resultId,omitempty"`
	ElapsedMs int64  `json:"elapsedMs"`
}
