package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"seedream-studio/internal/database"
	"seedream-studio/internal/models"
)

func TestCreatePromptDuplicateTitle(t *testing.T) {
	setupTestDB()

	_, err := CreatePrompt(PromptInput{Title: "cat", Body: "v1"})
	assert.NoError(t, err)

	_, err = CreatePrompt(PromptInput{Title: "cat", Body: "v2"})
	assert.ErrorIs(t, err, ErrPromptTitleTaken)
}

func TestGetPromptByTitleUsesCache(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	created, err := CreatePrompt(PromptInput{Title: "cat", Body: "a cat"})
	assert.NoError(t, err)

	// First read populates the cache
	got, err := GetPromptByTitle("cat")
	assert.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, mr.Exists(PromptCacheKeyPrefix+"cat"))

	// Served from cache even if the row changes underneath
	database.DB.Model(&models.Prompt{}).Where("id = ?", created.ID).Update("body", "changed")
	got, err = GetPromptByTitle("cat")
	assert.NoError(t, err)
	assert.Equal(t, "a cat", got.Body)
}

func TestUpdatePromptBumpsVersionAndInvalidatesCache(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	created, err := CreatePrompt(PromptInput{Title: "cat", Body: "a cat"})
	assert.NoError(t, err)

	_, err = GetPromptByTitle("cat")
	assert.NoError(t, err)
	assert.True(t, mr.Exists(PromptCacheKeyPrefix+"cat"))

	updated, err := UpdatePrompt(created.ID, PromptInput{Title: "cat", Body: "a fluffy cat", Tags: []string{"cute"}})
	assert.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.False(t, mr.Exists(PromptCacheKeyPrefix+"cat"))
}

func TestDeletePromptKeepsHistory(t *testing.T) {
	setupTestDB()

	created, err := CreatePrompt(PromptInput{Title: "cat", Body: "a cat"})
	assert.NoError(t, err)
	_, err = AddPromptVersion(created.ID, "seedream-ark", "https://s/x.png", "")
	assert.NoError(t, err)

	requestID, _, err := RecordGeneration(RecordInput{
		Prompt: "a cat", Status: models.GenerationStatusSuccess, PromptID: &created.ID,
	})
	assert.NoError(t, err)

	assert.NoError(t, DeletePrompt(created.ID))

	var versionCount int64
	database.DB.Model(&models.PromptVersion{}).Where("prompt_id = ?", created.ID).Count(&versionCount)
	assert.Zero(t, versionCount)

	// History survives with a null prompt reference.
	var request models.GenerationRequest
	assert.NoError(t, database.DB.First(&request, "id = ?", requestID).Error)
	assert.Nil(t, request.PromptID)
}

func TestListPromptsPagination(t *testing.T) {
	setupTestDB()

	for _, title := range []string{"a", "b", "c"} {
		_, err := CreatePrompt(PromptInput{Title: title})
		assert.NoError(t, err)
	}

	page, total, err := ListPrompts(1, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	page, _, err = ListPrompts(2, 2)
	assert.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestModelConfigCRUD(t *testing.T) {
	setupTestDB()

	cfg, err := CreateModelConfig(ModelConfigInput{
		Provider: "ark", ModelName: "doubao-seedream-4-5-251128",
		Defaults: map[string]interface{}{"resolution": "2K"},
	})
	assert.NoError(t, err)

	list, err := ListModelConfigs()
	assert.NoError(t, err)
	assert.Len(t, list, 1)

	updated, err := UpdateModelConfig(cfg.ID, ModelConfigInput{
		Provider: "ark", ModelName: "doubao-seedream-5", APIKeyRef: "env:ARK_API_KEY",
	})
	assert.NoError(t, err)
	assert.Equal(t, "doubao-seedream-5", updated.ModelName)

	assert.NoError(t, DeleteModelConfig(cfg.ID))
	assert.ErrorIs(t, DeleteModelConfig(cfg.ID), ErrModelConfigNotFound)
}
