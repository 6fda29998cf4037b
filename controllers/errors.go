package controllers

import (
	"errors"
	"net/http"

	"civicsync-be/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError maps store errors onto HTTP responses
func respondError(c *gin.Context, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, store.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrIssueNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
	case errors.Is(err, store.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, store.ErrInvalidTransition),
		errors.Is(err, store.ErrEventFull),
		errors.Is(err, store.ErrRegistrationClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service is shutting down"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
