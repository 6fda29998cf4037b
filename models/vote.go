package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Vote represents a user's upvote on an issue
type Vote struct {
	ID        string    `bson:"_id" json:"id"`
	Issue     string    `bson:"issue" json:"issue"`
	User      string    `bson:"user" json:"user"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// VoteID derives the document id of the vote a user casts on an issue, so a
// repeated write of the same pair lands on the same document.
func VoteID(issueID, userID string) string {
	return issueID + ":" + userID
}

// EnsureVoteIndex creates a unique compound index for (issue, user)
func EnsureVoteIndex(ctx context.Context, collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "issue", Value: 1}, {Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}
