package routes

import (
	"launchcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupEventRoutes sets up the websocket event stream
func SetupEventRoutes(r *gin.Engine) {
	r.GET("/ws/events", handlers.ServeEventsWS)
}
