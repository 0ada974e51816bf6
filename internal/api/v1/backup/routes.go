package backup

import (
	"github.com/gin-gonic/gin"

	"seedream-studio/internal/middleware"
)

func RegisterRoutes(router *gin.RouterGroup) {
	backupGroup := router.Group("/backup")
	{
		backupGroup.GET("/export", Export)
		backupGroup.POST("/import", middleware.RequireAdmin(), Import)
	}
}
