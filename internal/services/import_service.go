package services

import (
	"strings"

	"seedream-studio/internal/database"
	"seedream-studio/internal/models"
)

// importChunkSize bounds both existence queries and batched inserts.
const importChunkSize = 200

// ImportBackup re-hydrates a backup document into the store with at-most-once
// insertion per entity: prompts by title, model configs by
// (provider, modelName), requests and results by id.
//
// Inserts run per entity type with no cross-type transaction. A failure
// partway leaves earlier types committed; because every key is idempotent,
// re-running the same import skips what is already present and fills the
// remainder.
func ImportBackup(doc *BackupDocument) (*ImportStats, error) {
	stats := &ImportStats{}

	insertedTitles, err := importPrompts(doc, stats)
	if err != nil {
		return stats, err
	}
	if err := importModelConfigs(doc, stats); err != nil {
		return stats, err
	}
	if err := importGenerations(doc, stats); err != nil {
		return stats, err
	}

	invalidatePromptCache(insertedTitles)
	return stats, nil
}

func importPrompts(doc *BackupDocument, stats *ImportStats) ([]string, error) {
	stats.Prompts.Total = len(doc.Prompts)

	// First occurrence wins among duplicate titles within the batch.
	seen := make(map[string]bool)
	var candidates []models.Prompt
	for _, bp := range doc.Prompts {
		title := strings.TrimSpace(bp.Title)
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true

		version := bp.Version
		if version <= 0 {
			version = 1
		}
		tags := bp.Tags
		if tags == nil {
			tags = []string{}
		}
		variables := bp.Variables
		if variables == nil {
			variables = []string{}
		}

		candidates = append(candidates, models.Prompt{
			Title:     title,
			Body:      bp.Body,
			Tags:      models.MustJSON(tags),
			Variables: models.MustJSON(variables),
			Version:   version,
			Author:    bp.Author,
			Link:      bp.Link,
			Preview:   bp.Preview,
			Category:  bp.Category,
			Mode:      bp.Mode,
		})
	}

	titles := make([]string, 0, len(candidates))
	for _, c := range candidates {
		titles = append(titles, c.Title)
	}
	existing, err := existingPromptTitles(titles)
	if err != nil {
		return nil, err
	}

	var toInsert []models.Prompt
	var insertedTitles []string
	for _, c := range candidates {
		if !existing[c.Title] {
			toInsert = append(toInsert, c)
			insertedTitles = append(insertedTitles, c.Title)
		}
	}

	if len(toInsert) > 0 {
		if err := database.DB.CreateInBatches(toInsert, importChunkSize).Error; err != nil {
			return nil, err
		}
	}

	stats.Prompts.Inserted = len(toInsert)
	stats.Prompts.Skipped = stats.Prompts.Total - stats.Prompts.Inserted
	return insertedTitles, nil
}

func importModelConfigs(doc *BackupDocument, stats *ImportStats) error {
	stats.Models.Total = len(doc.Models)

	seen := make(map[string]bool)
	var candidates []models.ModelConfig
	for _, bm := range doc.Models {
		key := modelConfigKey(bm.Provider, bm.ModelName)
		if bm.Provider == "" || bm.ModelName == "" || seen[key] {
			continue
		}
		seen[key] = true

		defaults := bm.Defaults
		if defaults == nil {
			defaults = map[string]interface{}{}
		}
		candidates = append(candidates, models.ModelConfig{
			Provider:  bm.Provider,
			ModelName: bm.ModelName,
			APIKeyRef: bm.APIKeyRef,
			Defaults:  models.MustJSON(defaults),
		})
	}

	existing, err := existingModelConfigKeys(candidates)
	if err != nil {
		return err
	}

	var toInsert []models.ModelConfig
	for _, c := range candidates {
		if !existing[modelConfigKey(c.Provider, c.ModelName)] {
			toInsert = append(toInsert, c)
		}
	}

	if len(toInsert) > 0 {
		if err := database.DB.CreateInBatches(toInsert, importChunkSize).Error; err != nil {
			return err
		}
	}

	stats.Models.Inserted = len(toInsert)
	stats.Models.Skipped = stats.Models.Total - stats.Models.Inserted
	return nil
}

func importGenerations(doc *BackupDocument, stats *ImportStats) error {
	// Candidate requests come from the results' nested request objects: the
	// first result seen for a requestId defines that request. A result whose
	// request was never exported alongside it still gets one synthesized
	// from its own fields.
	seenRequests := make(map[string]bool)
	var requestCandidates []models.GenerationRequest

	seenResults := make(map[string]bool)
	var resultCandidates []models.GenerationResult

	promptTitles := make(map[string]bool)
	for _, br := range doc.GenerationResults {
		if t := br.Request.PromptTitle; t != "" {
			promptTitles[t] = true
		}
	}
	promptIDs, err := promptIDsByTitle(keys(promptTitles))
	if err != nil {
		return err
	}

	for _, br := range doc.GenerationResults {
		if br.ID == "" || br.RequestID == "" {
			continue
		}

		if !seenRequests[br.RequestID] {
			seenRequests[br.RequestID] = true

			modelList := br.Request.Models
			if modelList == nil {
				modelList = br.Derived.ModelIDs
			}
			if modelList == nil {
				modelList = []string{br.ModelID}
			}

			req := models.GenerationRequest{
				ID:             br.RequestID,
				Models:         models.MustJSON(modelList),
				ParamsOverride: br.Request.ParamsOverride,
				CreatedAt:      br.Request.CreatedAt,
			}
			if req.CreatedAt.IsZero() {
				req.CreatedAt = br.CreatedAt
			}
			// Orphaned history is acceptable: an unresolved title leaves
			// promptId null.
			if id, ok := promptIDs[br.Request.PromptTitle]; ok {
				pid := id
				req.PromptID = &pid
			}
			requestCandidates = append(requestCandidates, req)
		}

		if !seenResults[br.ID] {
			seenResults[br.ID] = true
			resultCandidates = append(resultCandidates, models.GenerationResult{
				ID:         br.ID,
				RequestID:  br.RequestID,
				ModelID:    br.ModelID,
				Status:     br.Status,
				ImageURL:   br.ImageURL,
				ParamsUsed: TruncateParamsUsed(br.ParamsUsed),
				ElapsedMs:  br.ElapsedMs,
				Error:      br.Error,
				CreatedAt:  br.CreatedAt,
			})
		}
	}

	stats.GenerationRequests.Total = len(requestCandidates)
	stats.GenerationResults.Total = len(doc.GenerationResults)

	existingReqs, err := existingIDs(&models.GenerationRequest{}, idsOfRequests(requestCandidates))
	if err != nil {
		return err
	}
	var reqsToInsert []models.GenerationRequest
	for _, c := range requestCandidates {
		if !existingReqs[c.ID] {
			reqsToInsert = append(reqsToInsert, c)
		}
	}
	if len(reqsToInsert) > 0 {
		if err := database.DB.CreateInBatches(reqsToInsert, importChunkSize).Error; err != nil {
			return err
		}
	}
	stats.GenerationRequests.Inserted = len(reqsToInsert)
	stats.GenerationRequests.Skipped = stats.GenerationRequests.Total - stats.GenerationRequests.Inserted

	existingResults, err := existingIDs(&models.GenerationResult{}, idsOfResults(resultCandidates))
	if err != nil {
		return err
	}
	var resultsToInsert []models.GenerationResult
	for _, c := range resultCandidates {
		if !existingResults[c.ID] {
			resultsToInsert = append(resultsToInsert, c)
		}
	}
	if len(resultsToInsert) > 0 {
		if err := database.DB.CreateInBatches(resultsToInsert, importChunkSize).Error; err != nil {
			return err
		}
	}
	stats.GenerationResults.Inserted = len(resultsToInsert)
	stats.GenerationResults.Skipped = stats.GenerationResults.Total - stats.GenerationResults.Inserted

	return nil
}

func modelConfigKey(provider, modelName string) string {
	return provider + "\x00" + modelName
}

func existingPromptTitles(titles []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, chunk := range chunkStrings(titles, importChunkSize) {
		var found []string
		err := database.DB.Model(&models.Prompt{}).
			Where("title IN ?", chunk).
			Pluck("title", &found).Error
		if err != nil {
			return nil, err
		}
		for _, t := range found {
			out[t] = true
		}
	}
	return out, nil
}

func promptIDsByTitle(titles []string) (map[string]uint, error) {
	out := make(map[string]uint)
	for _, chunk := range chunkStrings(titles, importChunkSize) {
		var found []models.Prompt
		err := database.DB.Select("id", "title").
			Where("title IN ?", chunk).
			Find(&found).Error
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			out[p.Title] = p.ID
		}
	}
	return out, nil
}

func existingModelConfigKeys(candidates []models.ModelConfig) (map[string]bool, error) {
	out := make(map[string]bool)
	for start := 0; start < len(candidates); start += importChunkSize {
		end := start + importChunkSize
		if end > len(candidates) {
			end = len(candidates)
		}
		pairs := make([][]interface{}, 0, end-start)
		for _, c := range candidates[start:end] {
			pairs = append(pairs, []interface{}{c.Provider, c.ModelName})
		}

		var found []models.ModelConfig
		err := database.DB.Select("provider", "model_name").
			Where("(provider, model_name) IN ?", pairs).
			Find(&found).Error
		if err != nil {
			return nil, err
		}
		for _, m := range found {
			out[modelConfigKey(m.Provider, m.ModelName)] = true
		}
	}
	return out, nil
}

func existingIDs(model interface{}, ids []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, chunk := range chunkStrings(ids, importChunkSize) {
		var found []string
		err := database.DB.Model(model).
			Where("id IN ?", chunk).
			Pluck("id", &found).Error
		if err != nil {
			return nil, err
		}
		for _, id := range found {
			out[id] = true
		}
	}
	return out, nil
}

func idsOfRequests(rows []models.GenerationRequest) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func idsOfResults(rows []models.GenerationResult) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func chunkStrings(values []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		out = append(out, values[start:end])
	}
	return out
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
