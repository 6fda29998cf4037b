package routes

import (
	"net/http"
	"time"

	"civicsync-be/middlewares"
	"civicsync-be/session"
	"civicsync-be/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the handlers are built from
type Deps struct {
	Store     *store.Store
	Sessions  session.Provider
	JWTSecret string

	Domain     string
	Production bool

	// IssueLimiter is nil when no Redis is configured; reports are then unlimited
	IssueLimiter  middlewares.Counter
	LimiterPrefix string
	IssueLimit    int
}

// Setup registers every route on r
func Setup(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	AuthRoutes(r, d)
	IssueRoutes(r, d)
	EventRoutes(r, d)
	ChatRoutes(r, d)
}

func (d Deps) issueRateLimit() gin.HandlerFunc {
	if d.IssueLimiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middlewares.IssueRateLimiter(d.IssueLimiter, d.LimiterPrefix, d.IssueLimit, 24*time.Hour)
}
