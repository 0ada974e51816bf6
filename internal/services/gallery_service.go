package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"seedream-studio/internal/database"
	"seedream-studio/internal/models"
)

const (
	galleryDefaultTake = 60
	galleryMaxTake     = 200
)

// GalleryItem is the denormalized read model of one GenerationResult plus the
// derived fields of its owning request, built for display and backup export.
type GalleryItem struct {
	ResultID      string    `json:"resultId"`
	RequestID     string    `json:"requestId"`
	PromptID      *uint     `json:"promptId,omitempty"`
	Status        string    `json:"status"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	Prompt        string    `json:"prompt"`
	Size          string    `json:"size"`
	Model         string    `json:"model"`
	ModelIDs      []string  `json:"modelIds"`
	HasImageInput bool      `json:"hasImageInput"`
	ImageInputURL string    `json:"imageInputUrl,omitempty"`
	ElapsedMs     *int64    `json:"elapsedMs,omitempty"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// GalleryPageOptions control one page fetch. Cursor is the last seen result
// id, exclusive. Status optionally filters on SUCCESS / ERROR exactly.
type GalleryPageOptions struct {
	Take   int
	Cursor string
	Status string
}

// GalleryPage returns one page of gallery items plus the cursor for the next
// page ("" when exhausted). Ordering is (created_at DESC, id DESC); the id
// tie-break keeps the cursor stable when rows share a timestamp.
func GalleryPage(opts GalleryPageOptions) ([]GalleryItem, string, error) {
	take := opts.Take
	if take <= 0 {
		take = galleryDefaultTake
	}
	if take > galleryMaxTake {
		take = galleryMaxTake
	}

	q := database.DB.Model(&models.GenerationResult{}).
		Preload("Request").Preload("Request.Prompt").
		Order("created_at DESC, id DESC")

	if opts.Status != "" {
		q = q.Where("status = ?", opts.Status)
	}

	if opts.Cursor != "" {
		var anchor models.GenerationResult
		err := database.DB.Select("id", "created_at").First(&anchor, "id = ?", opts.Cursor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Cursor row was deleted since the last page: end pagination
			// rather than re-serving rows the caller already saw.
			return []GalleryItem{}, "", nil
		}
		if err != nil {
			return nil, "", err
		}
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)",
			anchor.CreatedAt, anchor.CreatedAt, anchor.ID)
	}

	// Peek one row past the page to decide whether a next page exists.
	var rows []models.GenerationResult
	if err := q.Limit(take + 1).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > take {
		rows = rows[:take]
		nextCursor = rows[take-1].ID
	}

	items := make([]GalleryItem, 0, len(rows))
	for i := range rows {
		items = append(items, toGalleryItem(&rows[i]))
	}
	return items, nextCursor, nil
}

// GalleryItemByResultID returns the projection for a single result, or nil
// (not an error) when no such result exists.
func GalleryItemByResultID(id string) (*GalleryItem, error) {
	var row models.GenerationResult
	err := database.DB.Preload("Request").Preload("Request.Prompt").
		First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	item := toGalleryItem(&row)
	return &item, nil
}

// DeleteGenerations removes the given requests and their results. Results go
// first, then requests, in one transaction, so a reader never observes a
// dangling result row. Returns the number of requests deleted.
func DeleteGenerations(requestIDs []string) (int64, error) {
	if len(requestIDs) == 0 {
		return 0, nil
	}

	var deleted int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id IN ?", requestIDs).Delete(&models.GenerationResult{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", requestIDs).Delete(&models.GenerationRequest{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

// toGalleryItem reconstructs the display fields for one result, preferring
// the request's paramsOverride blob over table columns. Any parse failure
// degrades to the column fallbacks.
func toGalleryItem(row *models.GenerationResult) GalleryItem {
	item := GalleryItem{
		ResultID:  row.ID,
		RequestID: row.RequestID,
		Status:    row.Status,
		ImageURL:  row.ImageURL,
		Model:     row.ModelID,
		ModelIDs:  []string{row.ModelID},
		ElapsedMs: row.ElapsedMs,
		Error:     row.Error,
		CreatedAt: row.CreatedAt,
	}

	var params *models.CallParams
	if row.Request != nil {
		item.PromptID = row.Request.PromptID
		params = models.ParseCallParams(row.Request.ParamsOverride)

		if ms := models.StringList(row.Request.Models); ms != nil {
			item.ModelIDs = ms
		}
		if row.Request.Prompt != nil {
			item.Prompt = row.Request.Prompt.Body
		}
	}

	if params != nil {
		if params.Prompt != nil {
			item.Prompt = *params.Prompt
		}
		if params.Size != nil {
			item.Size = *params.Size
		}
		if params.Model != nil {
			item.Model = *params.Model
		}
		if params.ModelIDs != nil {
			item.ModelIDs = params.ModelIDs
		}
		if params.HasImageInput != nil {
			item.HasImageInput = *params.HasImageInput
		}
		if params.ImageInputURL != nil {
			item.ImageInputURL = *params.ImageInputURL
		}
	}

	return item
}
