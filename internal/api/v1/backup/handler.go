package backup

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"seedream-studio/internal/services"
	"seedream-studio/internal/utils"
)

// Export downloads the backup document. Bad query values never error; they
// fall back to defaults, so this endpoint always answers 200 unless the
// store itself fails.
func Export(c *gin.Context) {
	scope := c.DefaultQuery("scope", services.ExportScopeAll)

	limit := 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}

	doc, err := services.ExportBackup(scope, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorBody("Export failed: "+err.Error()))
		return
	}

	// Colon-free timestamp so the filename survives every filesystem.
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05Z")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="seedream-backup-%s.json"`, stamp))
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, doc)
}

type importResponse struct {
	OK         bool                  `json:"ok"`
	ImportedAt time.Time             `json:"importedAt"`
	Stats      *services.ImportStats `json:"stats"`
}

// Import uploads a backup document. Preconditions are checked in order:
// write authorization (route middleware, 401), content type (415), document
// shape and version (400). Only version 1 is ever accepted.
func Import(c *gin.Context) {
	contentType := c.GetHeader("Content-Type")
	if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
		c.JSON(http.StatusUnsupportedMediaType, utils.NewErrorBody("Content-Type must be application/json"))
		return
	}

	var doc services.BackupDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorBody("Invalid backup document: "+err.Error()))
		return
	}
	if doc.Version != services.BackupVersion {
		c.JSON(http.StatusBadRequest, utils.NewErrorBody(fmt.Sprintf("Unsupported backup version %d, expected %d", doc.Version, services.BackupVersion)))
		return
	}

	stats, err := services.ImportBackup(&doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorBody("Import failed: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, importResponse{
		OK:         true,
		ImportedAt: time.Now().UTC(),
		Stats:      stats,
	})
}
