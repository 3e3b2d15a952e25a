package approuters

import (
	"Chatline/internal/configuration"

	"github.com/gin-gonic/gin"
)

func MonitorRouters(router *gin.Engine, container *configuration.Container) {
	monitorRoute := router.Group("/api/monitor")
	{
		monitorRoute.GET("/stats", container.MonitorHandler.GetStats)
	}
}
