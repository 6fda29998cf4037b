//go:build container

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"civicsync-be/config"
	"civicsync-be/models"
	"civicsync-be/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startMongo(t *testing.T, ctx context.Context) string {
	t.Helper()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("mongodb://%s:%s", host, port.Port())
}

func TestMongoMirror_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	db, err := config.ConnectDB(ctx, startMongo(t, ctx), "civicsync_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Client().Disconnect(context.Background()) })

	mirror, err := store.NewMongoMirror(ctx, db)
	require.NoError(t, err)

	snap, err := mirror.Load(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Empty())

	require.NoError(t, mirror.SaveSnapshot(ctx, store.DefaultSeed(fixedNow)))

	s := newTestStore(t, store.WithMirror(mirror))
	loaded, err := mirror.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Restore(loaded))

	_, err = s.UpvoteIssue(ctx, "1", "viewer-a")
	require.NoError(t, err)
	_, err = s.UpdateIssueStatus(ctx, "1", models.InProgress, "Crew assigned")
	require.NoError(t, err)
	_, err = s.RegisterForEvent(ctx, "3")
	require.NoError(t, err)
	_, err = s.PostChatMessage(ctx, store.PostChatMessageInput{Sender: "Asha", Message: "Thanks!"})
	require.NoError(t, err)

	reloaded, err := mirror.Load(ctx)
	require.NoError(t, err)

	restored := newTestStore(t)
	require.NoError(t, restored.Restore(reloaded))

	issue, err := restored.Issue("1", "viewer-a")
	require.NoError(t, err)
	assert.Equal(t, models.InProgress, issue.Status)
	assert.Equal(t, "Crew assigned", issue.AdminRemarks)
	assert.Equal(t, 48, issue.Upvotes)
	assert.True(t, issue.HasUpvoted)

	event, err := restored.Event("3")
	require.NoError(t, err)
	assert.Equal(t, 19, event.RegisteredVolunteers)

	msgs := restored.ChatMessages()
	require.Len(t, msgs, 5)
	assert.Equal(t, "Thanks!", msgs[4].Message)
}

func TestMongoMirror_StaleWritesAreDropped(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	db, err := config.ConnectDB(ctx, startMongo(t, ctx), "civicsync_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Client().Disconnect(context.Background()) })

	mirror, err := store.NewMongoMirror(ctx, db)
	require.NoError(t, err)

	base := models.Issue{ID: "X", Type: "Potholes", Status: models.Pending, ReportedAt: fixedNow, UpdatedAt: fixedNow}
	newer, older := base, base
	newer.Upvotes, newer.Revision = 2, 3
	older.Upvotes, older.Revision = 1, 2

	require.NoError(t, mirror.SaveIssue(ctx, newer))
	require.NoError(t, mirror.SaveIssue(ctx, older))

	event := models.Event{ID: "E", Title: "Drive", Date: "2026-03-17", Type: models.Cleanup, VolunteerSlots: 10}
	full, partial := event, event
	full.RegisteredVolunteers, full.Revision = 4, 5
	partial.RegisteredVolunteers, partial.Revision = 3, 4

	require.NoError(t, mirror.SaveEvent(ctx, full))
	require.NoError(t, mirror.SaveEvent(ctx, partial))

	snap, err := mirror.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Issues, 1)
	assert.Equal(t, 2, snap.Issues[0].Upvotes)
	require.Len(t, snap.Events, 1)
	assert.Equal(t, 4, snap.Events[0].RegisteredVolunteers)
}
