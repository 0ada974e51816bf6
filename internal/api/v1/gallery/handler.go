package gallery

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"seedream-studio/internal/services"
	"seedream-studio/internal/utils"
)

// maxDownloadBytes caps the image download proxy at 50 MiB.
const maxDownloadBytes = 50 << 20

// downloadTimeout bounds the whole upstream fetch, headers and body.
const downloadTimeout = 60 * time.Second

var downloadClient = utils.NewHTTPClient(downloadTimeout)

type listResponse struct {
	Items      []services.GalleryItem `json:"items"`
	NextCursor string                 `json:"nextCursor,omitempty"`
}

// ListGenerations returns one cursor page of gallery items. Bad query values
// fall back to defaults.
func ListGenerations(c *gin.Context) {
	take := 0
	if v, err := strconv.Atoi(c.Query("take")); err == nil {
		take = v
	}

	items, nextCursor, err := services.GalleryPage(services.GalleryPageOptions{
		Take:   take,
		Cursor: c.Query("cursor"),
		Status: c.Query("status"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorBody("Failed to load gallery: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, listResponse{Items: items, NextCursor: nextCursor})
}

// GetGeneration returns a single gallery item by result id.
func GetGeneration(c *gin.Context) {
	item, err := services.GalleryItemByResultID(c.Param("resultId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorBody(err.Error()))
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, utils.NewErrorBody("Generation result not found"))
		return
	}
	c.JSON(http.StatusOK, item)
}

type deleteRequest struct {
	RequestIDs []string `json:"requestIds" binding:"required,min=1"`
}

// DeleteGenerations bulk-deletes generation requests and their results.
func DeleteGenerations(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorBody("Invalid request body: "+err.Error()))
		return
	}

	deleted, err := services.DeleteGenerations(req.RequestIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorBody("Delete failed: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// DownloadImage proxies a generated image back to the caller as an
// attachment. Only plain http(s) URLs to non-local hosts are fetched, and
// oversized payloads are refused before streaming.
func DownloadImage(c *gin.Context) {
	item, err := services.GalleryItemByResultID(c.Param("resultId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorBody(err.Error()))
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, utils.NewErrorBody("Generation result not found"))
		return
	}
	if item.ImageURL == "" {
		c.JSON(http.StatusNotFound, utils.NewErrorBody("This result has no image"))
		return
	}

	if reason := blockedURLReason(item.ImageURL); reason != "" {
		c.JSON(http.StatusBadRequest, utils.NewErrorBody(reason))
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, item.ImageURL, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorBody("Invalid image URL"))
		return
	}
	resp, err := downloadClient.Do(req)
	if err != nil {
		c.JSON(http.StatusBadGateway, utils.NewErrorBody("Failed to fetch image: "+err.Error()))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusBadGateway, utils.NewErrorBody(fmt.Sprintf("Upstream returned status %d", resp.StatusCode)))
		return
	}
	if resp.ContentLength > maxDownloadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, utils.NewErrorBody("Image exceeds the 50 MiB download limit"))
		return
	}

	filename := ""
	if u, err := url.Parse(item.ImageURL); err == nil {
		filename = path.Base(u.Path)
	}
	if filename == "" || filename == "." || filename == "/" {
		filename = item.ResultID + ".png"
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, filename),
	})
}

// blockedURLReason rejects data: URLs, non-http(s) schemes and local hosts
// before any outbound fetch is made.
func blockedURLReason(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "Invalid image URL"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "Only http(s) image URLs can be downloaded"
	}

	host := u.Hostname()
	if host == "" || host == "localhost" {
		return "Image URL points to a blocked host"
	}
	if ip := net.ParseIP(host); ip != nil && (ip.IsLoopback() || ip.IsUnspecified()) {
		return "Image URL points to a blocked host"
	}
	return ""
}
