package routes

import (
	"civicsync-be/controllers"
	"civicsync-be/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine, d Deps) {
	issueController := &controllers.IssueController{Store: d.Store}
	auth := middlewares.AuthMiddleware(d.JWTSecret)
	optionalAuth := middlewares.OptionalAuth(d.JWTSecret)

	issue := r.Group("/api/issue")
	{
		issue.GET("", optionalAuth, issueController.GetAllIssues)
		issue.GET("/analytics", auth, middlewares.RequireAdmin(), issueController.GetIssueAnalytics)
		issue.GET("/stats", auth, issueController.GetIssueAnalytics)
		issue.GET("/:id", optionalAuth, issueController.GetIssue)
		issue.POST("/create", auth, d.issueRateLimit(), issueController.CreateIssue)
		issue.PUT("/:id/status", auth, middlewares.RequireAdmin(), issueController.UpdateIssueStatus)
		issue.POST("/:id/upvote", auth, issueController.UpvoteIssue)
	}
}
