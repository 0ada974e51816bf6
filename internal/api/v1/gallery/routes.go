package gallery

import (
	"github.com/gin-gonic/gin"

	"seedream-studio/internal/middleware"
)

func RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/generations")
	{
		group.GET("", ListGenerations)
		group.GET("/:resultId", GetGeneration)
		group.GET("/:resultId/download", DownloadImage)
		group.DELETE("", middleware.RequireAdmin(), DeleteGenerations)
	}
}
