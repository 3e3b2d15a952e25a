package approuters

import (
	"Chatline/internal/configuration"
	"Chatline/internal/handler"

	"github.com/gin-gonic/gin"
)

func MessageRouters(router *gin.Engine, container *configuration.Container) {
	messageRoute := router.Group("/api/messages")
	messageRoute.Use(handler.AuthMiddleware(container.Verifier, container.Logger))
	{
		messageRoute.POST("", container.MessageHandler.SendMessage)
		messageRoute.DELETE("", container.MessageHandler.DeleteMessage)
		messageRoute.GET("/:chatId", container.MessageHandler.GetChatMessages)
	}
}
