package services

import (
	"time"

	"seedream-studio/internal/database"
	"seedream-studio/internal/models"
)

const (
	exportDefaultLimit = 2000
	exportMaxLimit     = 5000

	// ExportScopeAll includes prompts and model configs. Any other scope
	// value exports generation history only.
	ExportScopeAll = "all"
)

// ExportBackup serializes the store into one versioned backup document.
// Generations are always included; prompts and models only for scope "all".
func ExportBackup(scope string, limit int) (*BackupDocument, error) {
	take := limit
	if take <= 0 {
		take = exportDefaultLimit
	}
	if take > exportMaxLimit {
		take = exportMaxLimit
	}

	var total int64
	if err := database.DB.Model(&models.GenerationResult{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.GenerationResult
	err := database.DB.Preload("Request").Preload("Request.Prompt").
		Order("created_at DESC, id DESC").
		Limit(take).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	doc := &BackupDocument{
		Version:     BackupVersion,
		ExportedAt:  time.Now().UTC(),
		StorageMode: "database",
		Scope:       scope,
		Limits: BackupLimits{
			GenerationResults:      take,
			TotalGenerationResults: total,
			Truncated:              total > int64(take),
		},
		Prompts:           []BackupPrompt{},
		Models:            []BackupModelConfig{},
		GenerationResults: make([]BackupGenerationResult, 0, len(rows)),
	}

	for i := range rows {
		doc.GenerationResults = append(doc.GenerationResults, exportResult(&rows[i]))
	}

	if scope == ExportScopeAll {
		prompts, err := exportPrompts()
		if err != nil {
			return nil, err
		}
		modelConfigs, err := exportModelConfigs()
		if err != nil {
			return nil, err
		}
		doc.Prompts = prompts
		doc.Models = modelConfigs
	}

	return doc, nil
}

func exportResult(row *models.GenerationResult) BackupGenerationResult {
	item := toGalleryItem(row)

	out := BackupGenerationResult{
		ID:         row.ID,
		RequestID:  row.RequestID,
		ModelID:    row.ModelID,
		Status:     row.Status,
		ImageURL:   row.ImageURL,
		ParamsUsed: row.ParamsUsed,
		ElapsedMs:  row.ElapsedMs,
		Error:      row.Error,
		CreatedAt:  row.CreatedAt,
		Derived: DerivedParams{
			Prompt:        item.Prompt,
			Size:          item.Size,
			Model:         item.Model,
			ModelIDs:      item.ModelIDs,
			HasImageInput: item.HasImageInput,
			ImageInputURL: item.ImageInputURL,
		},
	}

	if row.Request != nil {
		out.Request = BackupRequest{
			PromptID:       row.Request.PromptID,
			Models:         models.StringList(row.Request.Models),
			ParamsOverride: row.Request.ParamsOverride,
			CreatedAt:      row.Request.CreatedAt,
		}
		if row.Request.Prompt != nil {
			out.Request.PromptTitle = row.Request.Prompt.Title
		}
	}
	if out.Request.Models == nil {
		out.Request.Models = []string{}
	}

	return out
}

func exportPrompts() ([]BackupPrompt, error) {
	var prompts []models.Prompt
	if err := database.DB.Order("created_at ASC").Find(&prompts).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(prompts))
	for _, p := range prompts {
		ids = append(ids, p.ID)
	}
	latest, err := latestPromptVersions(ids)
	if err != nil {
		return nil, err
	}

	out := make([]BackupPrompt, 0, len(prompts))
	for _, p := range prompts {
		bp := BackupPrompt{
			ID:        p.ID,
			Title:     p.Title,
			Body:      p.Body,
			Tags:      models.StringList(p.Tags),
			Variables: models.StringList(p.Variables),
			Version:   p.Version,
			Author:    p.Author,
			Link:      p.Link,
			Preview:   p.Preview,
			Category:  p.Category,
			Mode:      p.Mode,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		}
		if bp.Tags == nil {
			bp.Tags = []string{}
		}
		if bp.Variables == nil {
			bp.Variables = []string{}
		}
		if v, ok := latest[p.ID]; ok {
			bp.BestSample = bestSample(v)
		}
		out = append(out, bp)
	}
	return out, nil
}

// latestPromptVersions returns the most recent version per prompt id.
func latestPromptVersions(promptIDs []uint) (map[uint]models.PromptVersion, error) {
	out := make(map[uint]models.PromptVersion)
	if len(promptIDs) == 0 {
		return out, nil
	}

	var versions []models.PromptVersion
	err := database.DB.Where("prompt_id IN ?", promptIDs).
		Order("created_at DESC, id DESC").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}

	for _, v := range versions {
		if _, seen := out[v.PromptID]; !seen {
			out[v.PromptID] = v
		}
	}
	return out, nil
}

func bestSample(v models.PromptVersion) string {
	if v.ModelID == "" {
		return ""
	}
	if v.SampleURL != "" {
		return v.ModelID + " · " + v.SampleURL
	}
	return v.ModelID
}

func exportModelConfigs() ([]BackupModelConfig, error) {
	var configs []models.ModelConfig
	if err := database.DB.Order("created_at ASC").Find(&configs).Error; err != nil {
		return nil, err
	}

	out := make([]BackupModelConfig, 0, len(configs))
	for _, m := range configs {
		bm := BackupModelConfig{
			ID:        m.ID,
			Provider:  m.Provider,
			ModelName: m.ModelName,
			APIKeyRef: m.APIKeyRef,
			Defaults:  models.JSONObject(m.Defaults),
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		}
		if bm.Defaults != nil {
			if res, ok := bm.Defaults["resolution"].(string); ok {
				bm.Resolution = res
			}
			if presets, ok := bm.Defaults["sizePresets"].([]interface{}); ok {
				for _, p := range presets {
					if s, ok := p.(string); ok {
						bm.SizePresets = append(bm.SizePresets, s)
					}
				}
			}
		}
		out = append(out, bm)
	}
	return out, nil
}
