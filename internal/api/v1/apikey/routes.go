package apikey

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/apikey")
	{
		group.GET("", GetAPIKey)
		group.POST("", SetAPIKey)
		group.DELETE("", ClearAPIKey)
	}
}
