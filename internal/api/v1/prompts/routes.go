package prompts

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/prompts")
	{
		group.GET("", ListPrompts)
		group.POST("", CreatePrompt)
		group.GET("/:id", GetPrompt)
		group.PUT("/:id", UpdatePrompt)
		group.DELETE("/:id", DeletePrompt)
		group.POST("/:id/versions", AddPromptVersion)
	}
}
