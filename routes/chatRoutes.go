package routes

import (
	"civicsync-be/controllers"
	"civicsync-be/middlewares"

	"github.com/gin-gonic/gin"
)

// ChatRoutes sets up the community chat routes
func ChatRoutes(r *gin.Engine, d Deps) {
	chatController := &controllers.ChatController{Store: d.Store}
	auth := middlewares.AuthMiddleware(d.JWTSecret)

	chat := r.Group("/api/chat")
	{
		chat.GET("", chatController.GetMessages)
		chat.POST("", auth, chatController.PostMessage)
		chat.POST("/announcement", auth, middlewares.RequireAdmin(), chatController.PostAnnouncement)
	}
}
