package store

import (
	"context"
	"strings"

	"civicsync-be/models"
)

type PostChatMessageInput struct {
	Sender  string `json:"sender" validate:"required"`
	Message string `json:"message" validate:"required"`
	IsAdmin bool   `json:"isAdmin"`
}

// PostChatMessage appends a message stamped with the current time.
func (s *Store) PostChatMessage(ctx context.Context, input PostChatMessageInput) (models.ChatMessage, error) {
	input.Sender = strings.TrimSpace(input.Sender)
	input.Message = strings.TrimSpace(input.Message)

	if err := s.check(input); err != nil {
		return models.ChatMessage{}, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.ChatMessage{}, ErrClosed
	}
	msg := models.ChatMessage{
		ID:        s.nextID(func(id string) bool { _, ok := s.chatIdx[id]; return ok }),
		Sender:    input.Sender,
		Message:   input.Message,
		Timestamp: s.now(),
		IsAdmin:   input.IsAdmin,
	}
	s.chat = append(s.chat, msg)
	s.chatIdx[msg.ID] = struct{}{}
	s.mu.Unlock()

	s.mirrorChat(ctx, msg)
	return msg, nil
}

// PostAnnouncement broadcasts an admin announcement into the chat.
func (s *Store) PostAnnouncement(ctx context.Context, sender, title, message string) (models.ChatMessage, error) {
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" {
		return models.ChatMessage{}, invalidField("title", "is required")
	}
	if message == "" {
		return models.ChatMessage{}, invalidField("message", "is required")
	}

	return s.PostChatMessage(ctx, PostChatMessageInput{
		Sender:  sender,
		Message: "📢 " + title + ": " + message,
		IsAdmin: true,
	})
}

// ChatMessages lists every message in posting order.
func (s *Store) ChatMessages() []models.ChatMessage {
	return s.RecentChatMessages(0)
}

// RecentChatMessages returns the last n messages, oldest first. n <= 0
// returns every message.
func (s *Store) RecentChatMessages(n int) []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.chat
	if n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return append([]models.ChatMessage{}, msgs...)
}
