package approuters

import (
	"Chatline/internal/configuration"

	"github.com/gin-gonic/gin"
)

func AuthRouters(router *gin.Engine, container *configuration.Container) {
	authRoute := router.Group("/api/auth")
	{
		authRoute.POST("/register", container.AuthHandler.Register)
		authRoute.POST("/login", container.AuthHandler.Login)
	}
}
