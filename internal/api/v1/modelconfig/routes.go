package modelconfig

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/models")
	{
		group.GET("", ListModels)
		group.POST("", CreateModel)
		group.PUT("/:id", UpdateModel)
		group.DELETE("/:id", DeleteModel)
	}
}
