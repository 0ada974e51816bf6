package services

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"seedream-studio/internal/database"
	"seedream-studio/internal/models"
)

// ParamsUsedMaxChars is the hard character budget for the serialized
// paramsUsed blob. The cutoff slices the encoded string, so the stored value
// may end in an unparseable fragment; readers safe-parse and fall back.
// Best-effort archival, not guaranteed re-parseable.
const ParamsUsedMaxChars = 20000

// RecordInput captures one in-flight generation call for the history log.
type RecordInput struct {
	Prompt   string
	Size     string
	Model    string
	ModelIDs []string
	// Image is the optional image input as supplied by the caller: a single
	// URL / data URI string, or a list of them.
	Image    interface{}
	ImageURL string
	// Raw is the opaque provider response, archived in paramsUsed.
	Raw       interface{}
	Status    string
	Error     string
	ElapsedMs *int64
	// PromptID optionally links the call back to a stored prompt.
	PromptID *uint
}

// callParamsRecord is the write-side shape of the paramsOverride blob.
// ImageInputURL is omitted entirely when empty: a data-URI input yields
// hasImageInput=true with no imageInputUrl key at all.
type callParamsRecord struct {
	Prompt        string   `json:"prompt"`
	Size          string   `json:"size"`
	Model         string   `json:"model"`
	ModelIDs      []string `json:"modelIds"`
	HasImageInput bool     `json:"hasImageInput"`
	ImageInputURL string   `json:"imageInputUrl,omitempty"`
}

type paramsUsedRecord struct {
	Size          string      `json:"size"`
	Model         string      `json:"model"`
	ModelIDs      []string    `json:"modelIds"`
	HasImageInput bool        `json:"hasImageInput"`
	ImageInputURL string      `json:"imageInputUrl,omitempty"`
	Raw           interface{} `json:"raw,omitempty"`
}

// RecordGeneration writes one GenerationRequest and its GenerationResult as a
// single transaction and returns both ids. Callers treat this service as
// fire-and-forget: a history write failure must never fail the generation
// call itself.
func RecordGeneration(in RecordInput) (requestID, resultID string, err error) {
	prompt := strings.TrimSpace(in.Prompt)
	size := strings.TrimSpace(in.Size)
	model := strings.TrimSpace(in.Model)

	modelIDs := make([]string, 0, len(in.ModelIDs))
	for _, id := range in.ModelIDs {
		if id = strings.TrimSpace(id); id != "" {
			modelIDs = append(modelIDs, id)
		}
	}

	hasImageInput, imageInputURL := normalizeImageInput(in.Image)

	overrideBytes, _ := json.Marshal(callParamsRecord{
		Prompt:        prompt,
		Size:          size,
		Model:         model,
		ModelIDs:      modelIDs,
		HasImageInput: hasImageInput,
		ImageInputURL: imageInputURL,
	})

	usedBytes, _ := json.Marshal(paramsUsedRecord{
		Size:          size,
		Model:         model,
		ModelIDs:      modelIDs,
		HasImageInput: hasImageInput,
		ImageInputURL: imageInputURL,
		Raw:           in.Raw,
	})
	paramsUsed := TruncateParamsUsed(string(usedBytes))

	resultModelID := model
	if len(modelIDs) > 0 {
		resultModelID = modelIDs[0]
	}

	request := models.GenerationRequest{
		ID:             uuid.New().String(),
		PromptID:       in.PromptID,
		Models:         models.MustJSON(modelIDs),
		ParamsOverride: string(overrideBytes),
	}
	result := models.GenerationResult{
		ID:         uuid.New().String(),
		RequestID:  request.ID,
		ModelID:    resultModelID,
		Status:     in.Status,
		ImageURL:   in.ImageURL,
		ParamsUsed: paramsUsed,
		ElapsedMs:  in.ElapsedMs,
		Error:      in.Error,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		return tx.Create(&result).Error
	})
	if err != nil {
		return "", "", err
	}

	return request.ID, result.ID, nil
}

// TruncateParamsUsed applies the hard paramsUsed cutoff.
func TruncateParamsUsed(s string) string {
	if len(s) > ParamsUsedMaxChars {
		return s[:ParamsUsedMaxChars]
	}
	return s
}

// normalizeImageInput reports whether an image input was supplied and picks
// the persistable input URL: the first image value, kept only when it is a
// non-empty string that is not a data: URI. Embedded base64 payloads are
// never persisted (storage-size guard).
func normalizeImageInput(image interface{}) (hasImageInput bool, imageInputURL string) {
	var first string

	switch v := image.(type) {
	case string:
		if v != "" {
			hasImageInput = true
			first = v
		}
	case []string:
		if len(v) > 0 {
			hasImageInput = true
			first = v[0]
		}
	case []interface{}:
		if len(v) > 0 {
			hasImageInput = true
			first, _ = v[0].(string)
		}
	}

	if first != "" && !strings.HasPrefix(first, "data:") {
		imageInputURL = first
	}
	return hasImageInput, imageInputURL
}

// ImageInputList flattens the caller-supplied image value into the list of
// input images forwarded to the provider.
func ImageInputList(image interface{}) []string {
	switch v := image.(type) {
	case string:
		if v != "" {
			return []string{v}
		}
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
