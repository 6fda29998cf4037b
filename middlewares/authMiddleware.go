package middlewares

import (
	"net/http"
	"strings"

	"civicsync-be/models"
	authUtils "civicsync-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	ctxUserID   = "user_id"
	ctxUserName = "user_name"
	ctxUserRole = "user_role"

	// AuthCookie carries the session token for browser clients
	AuthCookie = "auth_token"
)

func tokenFromRequest(c *gin.Context) string {
	authHeader := c.Request.Header.Get("Authorization")
	if authHeader != "" {
		// Extracting token from "Bearer <token>" format
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie(AuthCookie); err == nil {
		return cookie
	}
	return ""
}

func setSession(c *gin.Context, claims *authUtils.Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUserName, claims.Name)
	c.Set(ctxUserRole, string(claims.Role))
}

// AuthMiddleware rejects requests without a valid session token
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No authorization token provided"})
			c.Abort()
			return
		}

		claims, err := authUtils.ParseToken(tokenString, jwtSecret)
		if err != nil {
			log.Debug().Err(err).Msg("token validation failed")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
			c.Abort()
			return
		}

		setSession(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches the session when a valid token is present and lets
// anonymous requests through otherwise
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := tokenFromRequest(c); tokenString != "" {
			if claims, err := authUtils.ParseToken(tokenString, jwtSecret); err == nil {
				setSession(c, claims)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Administrator access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the session attached by AuthMiddleware or OptionalAuth
func CurrentUser(c *gin.Context) (models.User, bool) {
	userID := c.GetString(ctxUserID)
	if userID == "" {
		return models.User{}, false
	}
	return models.User{
		ID:   userID,
		Name: c.GetString(ctxUserName),
		Role: models.Role(c.GetString(ctxUserRole)),
	}, true
}
