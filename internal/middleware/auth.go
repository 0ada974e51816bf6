package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"seedream-studio/config"
	"seedream-studio/internal/utils"
)

const (
	// APIKeyCookie holds the caller's own provider credential. It overrides
	// the server-configured key for that caller only.
	APIKeyCookie = "seedream_api_key"
	// AdminTokenCookie carries the shared secret for administrative writes.
	AdminTokenCookie = "seedream_admin_token"

	authContextKey = "authContext"
)

// AuthContext is the per-request authorization state, resolved once by
// ResolveAuth and passed explicitly to anything that needs it. There is no
// module-level mutable auth state.
type AuthContext struct {
	// APIKey is the provider credential to use for this request: the
	// caller's cookie if set, otherwise the server-configured key.
	APIKey string
	// APIKeySource is "cookie", "env", or "" when no key is available.
	APIKeySource string
	// IsAdmin reports whether the caller presented the admin write token.
	IsAdmin bool
}

// ResolveAuth resolves the AuthContext for each request from cookies, headers
// and server configuration.
func ResolveAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := AuthContext{}

		if v, err := c.Cookie(APIKeyCookie); err == nil && strings.TrimSpace(v) != "" {
			auth.APIKey = strings.TrimSpace(v)
			auth.APIKeySource = "cookie"
		} else if cfg.ArkAPIKey != "" {
			auth.APIKey = cfg.ArkAPIKey
			auth.APIKeySource = "env"
		}

		token := c.GetHeader("X-Admin-Token")
		if token == "" {
			token, _ = c.Cookie(AdminTokenCookie)
		}
		if cfg.AdminToken != "" && token != "" {
			auth.IsAdmin = subtle.ConstantTimeCompare([]byte(token), []byte(cfg.AdminToken)) == 1
		}

		c.Set(authContextKey, auth)
		c.Next()
	}
}

// GetAuth returns the AuthContext resolved for this request. The zero value
// is returned if ResolveAuth did not run.
func GetAuth(c *gin.Context) AuthContext {
	if v, ok := c.Get(authContextKey); ok {
		if auth, ok := v.(AuthContext); ok {
			return auth
		}
	}
	return AuthContext{}
}

// RequireAdmin aborts with 401 unless the caller holds write authorization.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetAuth(c).IsAdmin {
			c.JSON(http.StatusUnauthorized, utils.NewErrorBody("Unauthorized: admin token required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
