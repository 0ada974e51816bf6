package services

import (
	"errors"

	"seedream-studio/internal/database"
	"seedream-studio/internal/models"
)

var ErrModelConfigNotFound = errors.New("model config not found")

// ModelConfigInput is the writable subset of a model config.
type ModelConfigInput struct {
	Provider  string
	ModelName string
	APIKeyRef string
	Defaults  map[string]interface{}
}

// CreateModelConfig registers a model. Duplicate (provider, modelName) pairs
// are allowed here; only import de-duplicates on that pair.
func CreateModelConfig(in ModelConfigInput) (*models.ModelConfig, error) {
	defaults := in.Defaults
	if defaults == nil {
		defaults = map[string]interface{}{}
	}

	cfg := &models.ModelConfig{
		Provider:  in.Provider,
		ModelName: in.ModelName,
		APIKeyRef: in.APIKeyRef,
		Defaults:  models.MustJSON(defaults),
	}
	if err := database.DB.Create(cfg).Error; err != nil {
		return nil, err
	}
	return cfg, nil
}

// ListModelConfigs returns all configured models.
func ListModelConfigs() ([]models.ModelConfig, error) {
	var configs []models.ModelConfig
	if err := database.DB.Order("created_at asc").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// UpdateModelConfig replaces a model config's writable fields.
func UpdateModelConfig(id uint, in ModelConfigInput) (*models.ModelConfig, error) {
	var cfg models.ModelConfig
	if err := database.DB.First(&cfg, id).Error; err != nil {
		return nil, err
	}

	cfg.Provider = in.Provider
	cfg.ModelName = in.ModelName
	cfg.APIKeyRef = in.APIKeyRef
	if in.Defaults != nil {
		cfg.Defaults = models.MustJSON(in.Defaults)
	}

	if err := database.DB.Save(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DeleteModelConfig removes a model config by id.
func DeleteModelConfig(id uint) error {
	result := database.DB.Delete(&models.ModelConfig{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrModelConfigNotFound
	}
	return nil
}
