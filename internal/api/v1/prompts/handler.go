package prompts

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"seedream-studio/internal/services"
	"seedream-studio/internal/utils"
)

// CreatePrompt creates a new prompt with a unique title.
func CreatePrompt(c *gin.Context) {
	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorBody(err.Error()))
		return
	}

	prompt, err := services.CreatePrompt(services.PromptInput(req))
	if err != nil {
		if errors.Is(err, services.ErrPromptTitleTaken) {
			c.JSON(http.StatusConflict, utils.NewErrorBody(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorBody(err.Error()))
		return
	}

	c.JSON(http.StatusOK, prompt)
}

// ListPrompts returns a paginated prompt list, or a single prompt when a
// title filter is given. Title lookups go through the redis cache.
func ListPrompts(c *gin.Context) {
	if title := strings.TrimSpace(c.Query("title")); title != "" {
		prompt, err := services.GetPromptByTitle(title)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, utils.NewErrorBody("Prompt not found"))
				return
			}
			c.JSON(http.StatusInternalServerError, utils.NewErrorBody(err.Error()))
			return
		}
		c.JSON(http.StatusOK, prompt)
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	promptList, total, err := services.ListPrompts(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorBody(err.Error()))
		return
	}

	c.JSON(http.StatusOK, PromptListResponse{
		Prompts: promptList,
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}

// GetPrompt returns one prompt with its versions.
func GetPrompt(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	prompt, err := services.GetPromptByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorBody("Prompt not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorBody(err.Error()))
		return
	}

	c.JSON(http.StatusOK, prompt)
}

// UpdatePrompt updates a prompt and bumps its version.
func UpdatePrompt(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorBody(err.Error()))
		return
	}

	prompt, err := services.UpdatePrompt(id, services.PromptInput(req))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorBody("Prompt not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorBody(err.Error()))
		return
	}

	c.JSON(http.StatusOK, prompt)
}

// DeletePrompt deletes a prompt; its generation history survives with a
// null prompt reference.
func DeletePrompt(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := services.DeletePrompt(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorBody("Prompt not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorBody(err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AddPromptVersion saves an iteration of a prompt with its sample.
func AddPromptVersion(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req PromptVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorBody(err.Error()))
		return
	}

	version, err := services.AddPromptVersion(id, req.ModelID, req.SampleURL, req.Note)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorBody("Prompt not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorBody(err.Error()))
		return
	}

	c.JSON(http.StatusOK, version)
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorBody("Invalid id"))
		return 0, false
	}
	return uint(id), true
}
