package routes

import (
	"civicsync-be/controllers"
	"civicsync-be/middlewares"

	"github.com/gin-gonic/gin"
)

// EventRoutes sets up the event calendar routes
func EventRoutes(r *gin.Engine, d Deps) {
	eventController := &controllers.EventController{Store: d.Store}
	auth := middlewares.AuthMiddleware(d.JWTSecret)

	events := r.Group("/api/events")
	{
		events.GET("", eventController.GetEvents)
		events.GET("/:id", eventController.GetEvent)
		events.POST("", auth, middlewares.RequireAdmin(), eventController.CreateEvent)
		events.POST("/:id/register", auth, eventController.RegisterForEvent)
	}
}
