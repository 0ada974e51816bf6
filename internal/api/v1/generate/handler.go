package generate

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"seedream-studio/config"
	"seedream-studio/internal/middleware"
	"seedream-studio/internal/models"
	"seedream-studio/internal/seedream"
	"seedream-studio/internal/services"
	"seedream-studio/internal/utils"
)

// newClient is swapped in tests.
var newClient = func(baseURL, apiKey string) *seedream.Client {
	return seedream.NewClient(baseURL, apiKey)
}

// Generate submits one text-to-image call to the Seedream provider and
// records the outcome in generation history. History writes are best effort:
// they never fail the user-visible response.
func Generate(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorBody("Invalid request body: "+err.Error()))
			return
		}

		prompt := strings.TrimSpace(req.Prompt)
		if prompt == "" {
			c.JSON(http.StatusBadRequest, utils.NewErrorBody("Prompt must not be empty"))
			return
		}

		auth := middleware.GetAuth(c)
		if auth.APIKey == "" {
			c.JSON(http.StatusUnauthorized, utils.NewErrorBody("Seedream API Key is not configured. Set ARK_API_KEY on the server or save your own key via /apikey."))
			return
		}

		client := newClient(cfg.ArkBaseURL, auth.APIKey)

		start := time.Now()
		result, err := client.Generate(c.Request.Context(), seedream.GenerateParams{
			Model:  req.Model,
			Prompt: prompt,
			Size:   req.Size,
			Images: services.ImageInputList(req.Image),
		})
		elapsed := time.Since(start).Milliseconds()

		if err != nil {
			record(services.RecordInput{
				Prompt:    prompt,
				Size:      req.Size,
				Model:     req.Model,
				ModelIDs:  req.ModelIDs,
				Image:     req.Image,
				Status:    models.GenerationStatusError,
				Error:     err.Error(),
				ElapsedMs: &elapsed,
				PromptID:  req.PromptID,
			})
			c.JSON(http.StatusInternalServerError, utils.NewErrorBody(err.Error()))
			return
		}

		requestID, resultID := record(services.RecordInput{
			Prompt:    prompt,
			Size:      req.Size,
			Model:     req.Model,
			ModelIDs:  req.ModelIDs,
			Image:     req.Image,
			ImageURL:  result.URL,
			Raw:       result.Raw,
			Status:    models.GenerationStatusSuccess,
			ElapsedMs: &elapsed,
			PromptID:  req.PromptID,
		})

		c.JSON(http.StatusOK, GenerateResponse{
			URL:       result.URL,
			RequestID: requestID,
			ResultID:  resultID,
			ElapsedMs: elapsed,
		})
	}
}

// record persists history fire-and-forget, returning empty ids on failure.
func record(in services.RecordInput) (string, string) {
	requestID, resultID, err := services.RecordGeneration(in)
	if err != nil {
		zap.L().Warn("failed to record generation history", zap.Error(err))
		return "", ""
	}
	return requestID, resultID
}
