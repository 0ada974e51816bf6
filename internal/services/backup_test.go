package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"seedream-studio/internal/database"
	"seedream-studio/internal/models"
)

func TestExportTruncationAccounting(t *testing.T) {
	setupTestDB()
	seedResults(t, 5, time.Now().UTC())

	doc, err := ExportBackup(ExportScopeAll, 1)
	assert.NoError(t, err)
	assert.Equal(t, BackupVersion, doc.Version)
	assert.True(t, doc.Limits.Truncated)
	assert.Equal(t, 1, doc.Limits.GenerationResults)
	assert.Equal(t, int64(5), doc.Limits.TotalGenerationResults)
	assert.Len(t, doc.GenerationResults, 1)
}

func TestExportLimitClamping(t *testing.T) {
	setupTestDB()
	seedResults(t, 3, time.Now().UTC())

	doc, err := ExportBackup(ExportScopeAll, 0)
	assert.NoError(t, err)
	assert.Equal(t, 2000, doc.Limits.GenerationResults)
	assert.False(t, doc.Limits.Truncated)

	doc, err = ExportBackup(ExportScopeAll, 999999)
	assert.NoError(t, err)
	assert.Equal(t, 5000, doc.Limits.GenerationResults)
}

func TestExportScopeGenerationsOnly(t *testing.T) {
	setupTestDB()

	_, err := CreatePrompt(PromptInput{Title: "t1", Body: "b"})
	assert.NoError(t, err)
	_, err = CreateModelConfig(ModelConfigInput{Provider: "ark", ModelName: "seedream"})
	assert.NoError(t, err)
	seedResults(t, 2, time.Now().UTC())

	doc, err := ExportBackup("generations", 100)
	assert.NoError(t, err)
	assert.Empty(t, doc.Prompts)
	assert.Empty(t, doc.Models)
	assert.Len(t, doc.GenerationResults, 2)
}

func TestExportBestSample(t *testing.T) {
	setupTestDB()

	prompt, err := CreatePrompt(PromptInput{Title: "cat", Body: "a cat"})
	assert.NoError(t, err)

	old := models.PromptVersion{PromptID: prompt.ID, ModelID: "old-model", SampleURL: "https://s/old.png",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	assert.NoError(t, database.DB.Create(&old).Error)
	latest := models.PromptVersion{PromptID: prompt.ID, ModelID: "seedream-ark", SampleURL: "https://s/new.png",
		CreatedAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)}
	assert.NoError(t, database.DB.Create(&latest).Error)

	doc, err := ExportBackup(ExportScopeAll, 100)
	assert.NoError(t, err)
	assert.Len(t, doc.Prompts, 1)
	assert.Equal(t, "seedream-ark · https://s/new.png", doc.Prompts[0].BestSample)
}

func TestExportModelConfigDefaultsExtraction(t *testing.T) {
	setupTestDB()

	_, err := CreateModelConfig(ModelConfigInput{
		Provider:  "ark",
		ModelName: "doubao-seedream-4-5-251128",
		Defaults: map[string]interface{}{
			"resolution":  "2K",
			"sizePresets": []interface{}{"1:1", "16:9"},
			"other":       42,
		},
	})
	assert.NoError(t, err)

	// Ill-typed embeds are ignored, not errors.
	_, err = CreateModelConfig(ModelConfigInput{
		Provider:  "ark",
		ModelName: "other",
		Defaults: map[string]interface{}{
			"resolution":  7,
			"sizePresets": "not a list",
		},
	})
	assert.NoError(t, err)

	doc, err := ExportBackup(ExportScopeAll, 100)
	assert.NoError(t, err)
	assert.Len(t, doc.Models, 2)
	assert.Equal(t, "2K", doc.Models[0].Resolution)
	assert.Equal(t, []string{"1:1", "16:9"}, doc.Models[0].SizePresets)
	assert.Empty(t, doc.Models[1].Resolution)
	assert.Empty(t, doc.Models[1].SizePresets)
}

func seedFullStore(t *testing.T) {
	t.Helper()

	prompt, err := CreatePrompt(PromptInput{
		Title: "cat prompt", Body: "a cat", Tags: []string{"animal", "cute"},
		Variables: []string{"breed"},
	})
	assert.NoError(t, err)
	_, err = CreateModelConfig(ModelConfigInput{
		Provider: "ark", ModelName: "doubao-seedream-4-5-251128",
		Defaults: map[string]interface{}{"resolution": "2K"},
	})
	assert.NoError(t, err)

	_, _, err = RecordGeneration(RecordInput{
		Prompt: "a cat", Size: "2K", Model: "doubao-seedream-4-5-251128",
		ModelIDs: []string{"seedream-ark"},
		ImageURL: "https://x/y.png", Status: models.GenerationStatusSuccess,
		PromptID: &prompt.ID,
	})
	assert.NoError(t, err)
	_, _, err = RecordGeneration(RecordInput{
		Prompt: "a dog", Model: "doubao-seedream-4-5-251128",
		Status: models.GenerationStatusError, Error: "quota exceeded",
	})
	assert.NoError(t, err)
}

func TestBackupRoundTrip(t *testing.T) {
	setupTestDB()
	seedFullStore(t)

	doc, err := ExportBackup(ExportScopeAll, 100)
	assert.NoError(t, err)
	assert.Len(t, doc.Prompts, 1)
	assert.Len(t, doc.Models, 1)
	assert.Len(t, doc.GenerationResults, 2)

	// Import the document into a fresh store.
	setupTestDB()
	stats, err := ImportBackup(doc)
	assert.NoError(t, err)
	assert.Equal(t, EntityStats{Total: 1, Inserted: 1, Skipped: 0}, stats.Prompts)
	assert.Equal(t, EntityStats{Total: 1, Inserted: 1, Skipped: 0}, stats.Models)
	assert.Equal(t, EntityStats{Total: 2, Inserted: 2, Skipped: 0}, stats.GenerationRequests)
	assert.Equal(t, EntityStats{Total: 2, Inserted: 2, Skipped: 0}, stats.GenerationResults)

	var prompt models.Prompt
	assert.NoError(t, database.DB.First(&prompt, "title = ?", "cat prompt").Error)
	assert.Equal(t, "a cat", prompt.Body)
	assert.Equal(t, []string{"animal", "cute"}, models.StringList(prompt.Tags))
	assert.Equal(t, []string{"breed"}, models.StringList(prompt.Variables))

	var modelConfig models.ModelConfig
	assert.NoError(t, database.DB.First(&modelConfig, "provider = ? AND model_name = ?", "ark", "doubao-seedream-4-5-251128").Error)

	for _, br := range doc.GenerationResults {
		item, err := GalleryItemByResultID(br.ID)
		assert.NoError(t, err)
		assert.NotNil(t, item)
		assert.Equal(t, br.Derived.Prompt, item.Prompt)
		assert.Equal(t, br.Derived.Size, item.Size)
		assert.Equal(t, br.Derived.Model, item.Model)
		assert.Equal(t, br.Derived.ModelIDs, item.ModelIDs)
		assert.Equal(t, br.Status, item.Status)
		assert.Equal(t, br.ImageURL, item.ImageURL)
	}

	// The request that referenced "cat prompt" resolved against the
	// re-imported prompt row.
	var linked int64
	database.DB.Model(&models.GenerationRequest{}).Where("prompt_id = ?", prompt.ID).Count(&linked)
	assert.Equal(t, int64(1), linked)
}

func TestImportIsIdempotent(t *testing.T) {
	setupTestDB()
	seedFullStore(t)

	doc, err := ExportBackup(ExportScopeAll, 100)
	assert.NoError(t, err)

	setupTestDB()
	_, err = ImportBackup(doc)
	assert.NoError(t, err)

	var before []models.GenerationResult
	database.DB.Order("id").Find(&before)

	stats, err := ImportBackup(doc)
	assert.NoError(t, err)
	assert.Zero(t, stats.Prompts.Inserted)
	assert.Zero(t, stats.Models.Inserted)
	assert.Zero(t, stats.GenerationRequests.Inserted)
	assert.Zero(t, stats.GenerationResults.Inserted)
	assert.Equal(t, stats.Prompts.Total, stats.Prompts.Skipped)

	var after []models.GenerationResult
	database.DB.Order("id").Find(&after)
	assert.Equal(t, before, after)
}

func TestImportDeduplicatesWithinBatch(t *testing.T) {
	setupTestDB()

	doc := &BackupDocument{
		Version: BackupVersion,
		Prompts: []BackupPrompt{
			{Title: "dup", Body: "first wins"},
			{Title: "dup", Body: "second is dropped"},
			{Title: ""},
		},
		Models: []BackupModelConfig{
			{Provider: "ark", ModelName: "m1"},
			{Provider: "ark", ModelName: "m1"},
		},
	}

	stats, err := ImportBackup(doc)
	assert.NoError(t, err)
	assert.Equal(t, EntityStats{Total: 3, Inserted: 1, Skipped: 2}, stats.Prompts)
	assert.Equal(t, EntityStats{Total: 2, Inserted: 1, Skipped: 1}, stats.Models)

	var prompt models.Prompt
	assert.NoError(t, database.DB.First(&prompt, "title = ?", "dup").Error)
	assert.Equal(t, "first wins", prompt.Body)
}

func TestImportSynthesizesMissingRequest(t *testing.T) {
	setupTestDB()

	doc := &BackupDocument{
		Version: BackupVersion,
		GenerationResults: []BackupGenerationResult{
			{
				ID:        "res-a",
				RequestID: "req-a",
				ModelID:   "seedream-ark",
				Status:    "SUCCESS",
				ImageURL:  "https://x/a.png",
				Derived: DerivedParams{
					Prompt:   "from derived",
					ModelIDs: []string{"derived-1", "derived-2"},
				},
				// Request carries no models list of its own.
				Request: BackupRequest{ParamsOverride: `{"prompt":"from derived"}`},
			},
			{
				// Second result on the same request: the request was
				// already seen, only the result row is added.
				ID:        "res-b",
				RequestID: "req-a",
				ModelID:   "seedream-ark",
				Status:    "ERROR",
			},
			{
				// Missing id: not considered at all.
				RequestID: "req-x",
				Status:    "SUCCESS",
			},
		},
	}

	stats, err := ImportBackup(doc)
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.GenerationRequests.Inserted)
	assert.Equal(t, 2, stats.GenerationResults.Inserted)

	var req models.GenerationRequest
	assert.NoError(t, database.DB.First(&req, "id = ?", "req-a").Error)
	assert.Equal(t, []string{"derived-1", "derived-2"}, models.StringList(req.Models))
	assert.Nil(t, req.PromptID)
}

func TestImportResolvesPromptByTitleNotID(t *testing.T) {
	setupTestDB()

	existing, err := CreatePrompt(PromptInput{Title: "shared title", Body: "already here"})
	assert.NoError(t, err)

	staleID := existing.ID + 40
	doc := &BackupDocument{
		Version: BackupVersion,
		Prompts: []BackupPrompt{{ID: staleID, Title: "shared title", Body: "incoming copy"}},
		GenerationResults: []BackupGenerationResult{
			{
				ID:        "res-a",
				RequestID: "req-a",
				ModelID:   "m",
				Status:    "SUCCESS",
				Request:   BackupRequest{PromptID: &staleID, PromptTitle: "shared title", Models: []string{"m"}},
			},
		},
	}

	stats, err := ImportBackup(doc)
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Prompts.Skipped)

	var req models.GenerationRequest
	assert.NoError(t, database.DB.First(&req, "id = ?", "req-a").Error)
	assert.NotNil(t, req.PromptID)
	assert.Equal(t, existing.ID, *req.PromptID)
}

func TestImportChunksLargeBatches(t *testing.T) {
	setupTestDB()

	var results []BackupGenerationResult
	for i := 0; i < 450; i++ {
		results = append(results, BackupGenerationResult{
			ID:        fmt.Sprintf("res-%04d", i),
			RequestID: fmt.Sprintf("req-%04d", i),
			ModelID:   "m",
			Status:    "SUCCESS",
			Request:   BackupRequest{Models: []string{"m"}},
		})
	}
	doc := &BackupDocument{Version: BackupVersion, GenerationResults: results}

	stats, err := ImportBackup(doc)
	assert.NoError(t, err)
	assert.Equal(t, 450, stats.GenerationResults.Inserted)

	stats, err = ImportBackup(doc)
	assert.NoError(t, err)
	assert.Zero(t, stats.GenerationResults.Inserted)
	assert.Equal(t, 450, stats.GenerationResults.Skipped)
}
