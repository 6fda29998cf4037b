package routes

import (
	"civicsync-be/controllers"
	"civicsync-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine, d Deps) {
	authController := &controllers.AuthController{
		Provider:   d.Sessions,
		JWTSecret:  d.JWTSecret,
		Domain:     d.Domain,
		Production: d.Production,
	}

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authController.RegisterUser)
		auth.POST("/login", authController.LoginUser)
		auth.POST("/logout", authController.LogoutUser)
		auth.GET("/me", middlewares.AuthMiddleware(d.JWTSecret), authController.GetMe)
	}
}
