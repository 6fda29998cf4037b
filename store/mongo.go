package store

import (
	"context"
	"fmt"
	"time"

	"civicsync-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMirror persists store records into MongoDB, one collection per record
// kind, and loads them back on startup.
type MongoMirror struct {
	issues  *mongo.Collection
	votes   *mongo.Collection
	events  *mongo.Collection
	chat    *mongo.Collection
	timeout time.Duration
}

// NewMongoMirror prepares the collections of db and ensures the unique vote index.
func NewMongoMirror(ctx context.Context, db *mongo.Database) (*MongoMirror, error) {
	m := &MongoMirror{
		issues:  db.Collection("issues"),
		votes:   db.Collection("votes"),
		events:  db.Collection("events"),
		chat:    db.Collection("chatMessages"),
		timeout: 10 * time.Second,
	}
	if err := models.EnsureVoteIndex(ctx, m.votes); err != nil {
		return nil, fmt.Errorf("ensure vote index: %w", err)
	}
	return m, nil
}

// writeContext detaches writes from the caller's cancellation so a client
// hanging up does not drop a change the store already applied.
func (m *MongoMirror) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
}

func (m *MongoMirror) upsert(ctx context.Context, coll *mongo.Collection, id string, doc any) error {
	ctx, cancel := m.writeContext(ctx)
	defer cancel()

	_, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

// upsertRevision replaces the document only when the stored copy has no
// higher revision. A newer stored copy makes the upsert collide on _id, and
// that write is dropped as stale.
func (m *MongoMirror) upsertRevision(ctx context.Context, coll *mongo.Collection, id string, revision int64, doc any) error {
	ctx, cancel := m.writeContext(ctx)
	defer cancel()

	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"revision": bson.M{"$exists": false}},
			bson.M{"revision": bson.M{"$lte": revision}},
		},
	}
	_, err := coll.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (m *MongoMirror) SaveIssue(ctx context.Context, issue models.Issue) error {
	return m.upsertRevision(ctx, m.issues, issue.ID, issue.Revision, issue)
}

func (m *MongoMirror) SaveVote(ctx context.Context, vote models.Vote) error {
	return m.upsert(ctx, m.votes, vote.ID, vote)
}

func (m *MongoMirror) SaveEvent(ctx context.Context, event models.Event) error {
	return m.upsertRevision(ctx, m.events, event.ID, event.Revision, event)
}

func (m *MongoMirror) SaveChatMessage(ctx context.Context, msg models.ChatMessage) error {
	return m.upsert(ctx, m.chat, msg.ID, msg)
}

// SaveSnapshot writes every record of snap.
func (m *MongoMirror) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	for _, issue := range snap.Issues {
		if err := m.SaveIssue(ctx, issue); err != nil {
			return fmt.Errorf("save issue %s: %w", issue.ID, err)
		}
	}
	for _, vote := range snap.Votes {
		if err := m.SaveVote(ctx, vote); err != nil {
			return fmt.Errorf("save vote %s: %w", vote.ID, err)
		}
	}
	for _, event := range snap.Events {
		if err := m.SaveEvent(ctx, event); err != nil {
			return fmt.Errorf("save event %s: %w", event.ID, err)
		}
	}
	for _, msg := range snap.ChatMessages {
		if err := m.SaveChatMessage(ctx, msg); err != nil {
			return fmt.Errorf("save chat message %s: %w", msg.ID, err)
		}
	}
	return nil
}

// Load reads every persisted record. Issues and chat messages come back in
// creation order, events and votes in insertion order.
func (m *MongoMirror) Load(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var snap Snapshot
	byCreation := func(field string) *options.FindOptions {
		return options.Find().SetSort(bson.D{{Key: field, Value: 1}, {Key: "_id", Value: 1}})
	}
	natural := options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}})

	if err := findAll(ctx, m.issues, byCreation("reportedAt"), &snap.Issues); err != nil {
		return Snapshot{}, fmt.Errorf("load issues: %w", err)
	}
	if err := findAll(ctx, m.votes, natural, &snap.Votes); err != nil {
		return Snapshot{}, fmt.Errorf("load votes: %w", err)
	}
	if err := findAll(ctx, m.events, natural, &snap.Events); err != nil {
		return Snapshot{}, fmt.Errorf("load events: %w", err)
	}
	if err := findAll(ctx, m.chat, byCreation("timestamp"), &snap.ChatMessages); err != nil {
		return Snapshot{}, fmt.Errorf("load chat messages: %w", err)
	}
	return snap, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, opts *options.FindOptions, out *[]T) error {
	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return err
	}
	*out = items
	return nil
}

// Empty reports whether nothing has been persisted yet.
func (s Snapshot) Empty() bool {
	return len(s.Issues) == 0 && len(s.Votes) == 0 && len(s.Events) == 0 && len(s.ChatMessages) == 0
}
