package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"seedream-studio/config"
	"seedream-studio/internal/api/v1/apikey"
	"seedream-studio/internal/api/v1/backup"
	"seedream-studio/internal/api/v1/gallery"
	"seedream-studio/internal/api/v1/generate"
	"seedream-studio/internal/api/v1/modelconfig"
	"seedream-studio/internal/api/v1/prompts"
	"seedream-studio/internal/middleware"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Admin-Token"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1
	v1 := router.Group("/api/v1")
	v1.Use(middleware.ResolveAuth(cfg))
	{
		generate.RegisterRoutes(v1, cfg)
		backup.RegisterRoutes(v1)
		gallery.RegisterRoutes(v1)
		apikey.RegisterRoutes(v1)
		prompts.RegisterRoutes(v1)
		modelconfig.RegisterRoutes(v1)
	}

	return router
}
