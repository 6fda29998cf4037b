package models

import "time"

// ChatMessage is a single entry in the community chat
type ChatMessage struct {
	ID        string    `bson:"_id" json:"id"`
	Sender    string    `bson:"sender" json:"sender"`
	Message   string    `bson:"message" json:"message"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	IsAdmin   bool      `bson:"isAdmin" json:"isAdmin"`
}
