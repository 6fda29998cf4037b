package controllers

import (
	"context"
	"errors"
	"net/http"

	"civicsync-be/middlewares"
	"civicsync-be/models"
	"civicsync-be/session"
	authUtils "civicsync-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const cookieMaxAge = 3600 // 1 hour

// AuthController exposes the session provider over HTTP
type AuthController struct {
	Provider   session.Provider
	JWTSecret  string
	Domain     string
	Production bool
}

// RegisterUser handles citizen signup
func (ac *AuthController) RegisterUser(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.Provider.Signup(c.Request.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		ac.respondSessionError(c, err)
		return
	}

	ac.issueSession(c, http.StatusCreated, user)
}

// LoginUser handles login for both roles
func (ac *AuthController) LoginUser(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role" binding:"omitempty,oneof=citizen admin"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := models.Citizen
	if input.Role != "" {
		role = models.Role(input.Role)
	}

	user, err := ac.Provider.Login(c.Request.Context(), input.Email, input.Password, role)
	if err != nil {
		ac.respondSessionError(c, err)
		return
	}

	ac.issueSession(c, http.StatusOK, user)
}

// GetMe returns the authenticated session
func (ac *AuthController) GetMe(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":   user.ID,
		"name": user.Name,
		"role": user.Role,
	})
}

// LogoutUser handles user logout by clearing the auth_token cookie
func (ac *AuthController) LogoutUser(c *gin.Context) {
	c.SetCookie(middlewares.AuthCookie, "", -1, "/", ac.cookieDomain(), ac.Production, true)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

func (ac *AuthController) issueSession(c *gin.Context, status int, user models.User) {
	token, err := authUtils.GenerateAndSetToken(user, ac.JWTSecret)
	if err != nil {
		log.Error().Err(err).Msg("Error generating token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	cookie := &http.Cookie{
		Name:     middlewares.AuthCookie,
		Value:    token,
		MaxAge:   cookieMaxAge,
		Path:     "/",
		Domain:   ac.cookieDomain(),
		Secure:   ac.Production, // false for HTTP (dev), true for HTTPS (prod)
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if ac.Production {
		// cross-origin front-end
		cookie.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(c.Writer, cookie)

	c.JSON(status, gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
		"token":     token,
	})
}

// For production, don't set domain to allow cross-origin cookies
func (ac *AuthController) cookieDomain() string {
	if ac.Production {
		return ""
	}
	return ac.Domain
}

func (ac *AuthController) respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, session.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists"})
	case errors.Is(err, session.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Authentication timed out"})
	default:
		log.Error().Err(err).Msg("session provider failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
