package generate

import (
	"github.com/gin-gonic/gin"

	"seedream-studio/config"
	"seedream-studio/internal/middleware"
)

func RegisterRoutes(router *gin.RouterGroup, cfg *config.Config) {
	router.POST("/generate",
		middleware.RateLimit(cfg.GenerateRPS, cfg.GenerateBurst),
		Generate(cfg))
}
