package controllers

import (
	"net/http"
	"strconv"

	"civicsync-be/middlewares"
	"civicsync-be/store"

	"github.com/gin-gonic/gin"
)

const defaultChatLimit = 10

// ChatController serves the community chat and admin announcements
type ChatController struct {
	Store *store.Store
}

// GetMessages returns the most recent messages, oldest first
func (cc *ChatController) GetMessages(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultChatLimit)))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	c.JSON(http.StatusOK, cc.Store.RecentChatMessages(limit))
}

// PostMessage posts a message as the caller
func (cc *ChatController) PostMessage(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Message string `json:"message" binding:"max=2000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := cc.Store.PostChatMessage(c.Request.Context(), store.PostChatMessageInput{
		Sender:  user.Name,
		Message: input.Message,
		IsAdmin: user.IsAdmin(),
	})
	middlewares.RecordStoreOperation("post_chat_message", err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// PostAnnouncement broadcasts an administrator announcement
func (cc *ChatController) PostAnnouncement(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Title   string `json:"title" binding:"max=200"`
		Message string `json:"message" binding:"max=2000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := cc.Store.PostAnnouncement(c.Request.Context(), user.Name, input.Title, input.Message)
	middlewares.RecordStoreOperation("post_announcement", err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}
