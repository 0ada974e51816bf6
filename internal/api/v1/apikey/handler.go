package apikey

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"seedream-studio/internal/middleware"
	"seedream-studio/internal/utils"
)

// cookieMaxAge keeps the caller's key for 30 days.
const cookieMaxAge = 30 * 24 * 60 * 60

// GetAPIKey reports whether a provider credential is available for this
// caller and where it comes from. The key itself is never echoed back.
func GetAPIKey(c *gin.Context) {
	auth := middleware.GetAuth(c)
	c.JSON(http.StatusOK, gin.H{
		"configured": auth.APIKey != "",
		"source":     auth.APIKeySource,
	})
}

type setKeyRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}

// SetAPIKey stores the caller's own provider credential in an HTTP-only
// cookie scoped to this caller.
func SetAPIKey(c *gin.Context) {
	var req setKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorBody("apiKey is required"))
		return
	}

	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		c.JSON(http.StatusBadRequest, utils.NewErrorBody("apiKey is required"))
		return
	}

	c.SetCookie(middleware.APIKeyCookie, key, cookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ClearAPIKey removes the caller's stored credential.
func ClearAPIKey(c *gin.Context) {
	c.SetCookie(middleware.APIKeyCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
