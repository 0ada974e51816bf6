package modelconfig

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"seedream-studio/internal/services"
	"seedream-studio/internal/utils"
)

type ModelConfigRequest struct {
	Provider  string                 `json:"provider" binding:"required"`
	ModelName string                 `json:"modelName" binding:"required"`
	APIKeyRef string                 `json:"apiKeyRef"`
	Defaults  map[string]interface{} `json:"defaults"`
}

// ListModels returns all configured models.
func ListModels(c *gin.Context) {
	configs, err := services.ListModelConfigs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": configs})
}

// CreateModel registers a model config.
func CreateModel(c *gin.Context) {
	var req ModelConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorBody(err.Error()))
		return
	}

	cfg, err := services.CreateModelConfig(services.ModelConfigInput(req))
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateModel replaces a model config's writable fields.
func UpdateModel(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req ModelConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorBody(err.Error()))
		return
	}

	cfg, err := services.UpdateModelConfig(id, services.ModelConfigInput(req))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorBody("Model config not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// DeleteModel removes a model config.
func DeleteModel(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := services.DeleteModelConfig(id); err != nil {
		if errors.Is(err, services.ErrModelConfigNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorBody(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorBody("Invalid id"))
		return 0, false
	}
	return uint(id), true
}
