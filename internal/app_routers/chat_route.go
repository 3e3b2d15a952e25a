package approuters

import (
	"Chatline/internal/configuration"
	"Chatline/internal/handler"

	"github.com/gin-gonic/gin"
)

func ChatRouters(router *gin.Engine, container *configuration.Container) {
	chatRoute := router.Group("/api/chats")
	chatRoute.Use(handler.AuthMiddleware(container.Verifier, container.Logger))
	{
		chatRoute.POST("/private", container.ChatHandler.CreatePrivateChat)
		chatRoute.POST("/group", container.ChatHandler.CreateGroupChat)
		chatRoute.GET("", container.ChatHandler.GetUserChats)
		chatRoute.DELETE("/:id", container.ChatHandler.DeleteChat)
	}
}
