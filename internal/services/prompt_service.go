package services

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"seedream-studio/internal/database"
	"seedream-studio/internal/models"
)

const (
	PromptCacheKeyPrefix = "prompt:title:"
	PromptCacheDuration  = 24 * time.Hour
)

var ErrPromptTitleTaken = errors.New("prompt title already exists")

// PromptInput is the writable subset of a prompt.
type PromptInput struct {
	Title     string
	Body      string
	Tags      []string
	Variables []string
	Author    string
	Link      string
	Preview   string
	Category  string
	Mode      string
}

// CreatePrompt creates a new prompt. Titles are unique.
func CreatePrompt(in PromptInput) (*models.Prompt, error) {
	var existing models.Prompt
	if err := database.DB.Where("title = ?", in.Title).First(&existing).Error; err == nil {
		return nil, ErrPromptTitleTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	prompt := &models.Prompt{
		Title:     in.Title,
		Body:      in.Body,
		Tags:      models.MustJSON(orEmpty(in.Tags)),
		Variables: models.MustJSON(orEmpty(in.Variables)),
		Version:   1,
		Author:    in.Author,
		Link:      in.Link,
		Preview:   in.Preview,
		Category:  in.Category,
		Mode:      in.Mode,
	}

	if err := database.DB.Create(prompt).Error; err != nil {
		return nil, err
	}

	return prompt, nil
}

// GetPromptByID retrieves a prompt with its versions.
func GetPromptByID(id uint) (*models.Prompt, error) {
	var prompt models.Prompt
	err := database.DB.Preload("Versions", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).First(&prompt, id).Error
	if err != nil {
		return nil, err
	}
	return &prompt, nil
}

// GetPromptByTitle retrieves a prompt by its natural key, using cache.
func GetPromptByTitle(title string) (*models.Prompt, error) {
	cacheKey := PromptCacheKeyPrefix + title

	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var prompt models.Prompt
			if err := json.Unmarshal([]byte(val), &prompt); err == nil {
				return &prompt, nil
			}
		}
	}

	var prompt models.Prompt
	if err := database.DB.Where("title = ?", title).First(&prompt).Error; err != nil {
		return nil, err
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(prompt); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, PromptCacheDuration)
		}
	}

	return &prompt, nil
}

// ListPrompts retrieves a paginated list of prompts
func ListPrompts(page, pageSize int) ([]models.Prompt, int64, error) {
	var prompts []models.Prompt
	var total int64

	db := database.DB.Model(&models.Prompt{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := db.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&prompts).Error; err != nil {
		return nil, 0, err
	}

	return prompts, total, nil
}

// UpdatePrompt updates an existing prompt and bumps its version.
func UpdatePrompt(id uint, in PromptInput) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := database.DB.First(&prompt, id).Error; err != nil {
		return nil, err
	}

	oldTitle := prompt.Title
	if in.Title != "" {
		prompt.Title = in.Title
	}
	prompt.Body = in.Body
	prompt.Tags = models.MustJSON(orEmpty(in.Tags))
	prompt.Variables = models.MustJSON(orEmpty(in.Variables))
	prompt.Author = in.Author
	prompt.Link = in.Link
	prompt.Preview = in.Preview
	prompt.Category = in.Category
	prompt.Mode = in.Mode
	prompt.Version++

	if err := database.DB.Save(&prompt).Error; err != nil {
		return nil, err
	}

	invalidatePromptCache([]string{oldTitle, prompt.Title})
	return &prompt, nil
}

// DeletePrompt deletes a prompt by id. Generation requests keep running with
// a null prompt reference.
func DeletePrompt(id uint) error {
	var prompt models.Prompt
	if err := database.DB.First(&prompt, id).Error; err != nil {
		return err
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prompt_id = ?", id).Delete(&models.PromptVersion{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.GenerationRequest{}).
			Where("prompt_id = ?", id).
			Update("prompt_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Prompt{}, id).Error
	})
	if err != nil {
		return err
	}

	invalidatePromptCache([]string{prompt.Title})
	return nil
}

// AddPromptVersion records a saved iteration of a prompt.
func AddPromptVersion(promptID uint, modelID, sampleURL, note string) (*models.PromptVersion, error) {
	var prompt models.Prompt
	if err := database.DB.First(&prompt, promptID).Error; err != nil {
		return nil, err
	}

	version := &models.PromptVersion{
		PromptID:  promptID,
		ModelID:   modelID,
		SampleURL: sampleURL,
		Note:      note,
	}
	if err := database.DB.Create(version).Error; err != nil {
		return nil, err
	}
	return version, nil
}

// invalidatePromptCache drops cached prompt entries, best effort.
func invalidatePromptCache(titles []string) {
	if database.RedisClient == nil || len(titles) == 0 {
		return
	}
	keys := make([]string, 0, len(titles))
	for _, t := range titles {
		if t != "" {
			keys = append(keys, PromptCacheKeyPrefix+t)
		}
	}
	if len(keys) > 0 {
		database.RedisClient.Del(database.Ctx, keys...)
	}
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
