// Package store holds the application state: issues, events and chat
// messages, and the operations that mutate them.
package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"civicsync-be/models"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mirror receives every record the store changes, after the change has been
// applied in memory. A failing mirror never rolls back the store.
type Mirror interface {
	SaveIssue(ctx context.Context, issue models.Issue) error
	SaveVote(ctx context.Context, vote models.Vote) error
	SaveEvent(ctx context.Context, event models.Event) error
	SaveChatMessage(ctx context.Context, msg models.ChatMessage) error
}

type issueRecord struct {
	issue  models.Issue
	voters map[string]struct{}
}

// Store is safe for concurrent use. Every operation runs as one critical
// section, so operations are applied in a single total order.
type Store struct {
	mu     sync.RWMutex
	closed bool

	issues   []*issueRecord
	issueIdx map[string]*issueRecord
	events   []*models.Event
	eventIdx map[string]*models.Event
	chat     []models.ChatMessage
	chatIdx  map[string]struct{}

	validate *validator.Validate
	now      func() time.Time
	newID    func() string
	mirror   Mirror
	log      zerolog.Logger
}

type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the ObjectID based id source. Generated ids that
// are already taken are discarded and drawn again.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithMirror(m Mirror) Option {
	return func(s *Store) { s.mirror = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New returns an empty store. Use Restore to seed it.
func New(opts ...Option) *Store {
	s := &Store{
		issueIdx: make(map[string]*issueRecord),
		eventIdx: make(map[string]*models.Event),
		chatIdx:  make(map[string]struct{}),
		validate: newValidator(),
		now:      time.Now,
		newID:    func() string { return primitive.NewObjectID().Hex() },
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Close stops the store from accepting mutations. Reads keep working.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Snapshot is a point-in-time copy of the store's collections.
type Snapshot struct {
	Issues       []models.Issue       `json:"issues"`
	Votes        []models.Vote        `json:"votes"`
	Events       []models.Event       `json:"events"`
	ChatMessages []models.ChatMessage `json:"chatMessages"`
}

// Restore appends the contents of snap to the store, keeping its order.
// Nothing is applied when any record collides with an existing id, a vote
// references an unknown issue, or a record breaks its own invariants.
// Restored issues keep their stored upvote counts, raised to the number of
// distinct voters when the votes outnumber them.
func (s *Store) Restore(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	seenIssues := make(map[string]struct{}, len(snap.Issues))
	for _, issue := range snap.Issues {
		if _, ok := s.issueIdx[issue.ID]; ok {
			return fmt.Errorf("%w: issue %q", ErrDuplicateID, issue.ID)
		}
		if _, ok := seenIssues[issue.ID]; ok || issue.ID == "" {
			return fmt.Errorf("%w: issue %q", ErrDuplicateID, issue.ID)
		}
		seenIssues[issue.ID] = struct{}{}
	}
	for _, vote := range snap.Votes {
		_, known := s.issueIdx[vote.Issue]
		_, restoring := seenIssues[vote.Issue]
		if !known && !restoring {
			return fmt.Errorf("%w: vote for issue %q", ErrIssueNotFound, vote.Issue)
		}
	}
	seenEvents := make(map[string]struct{}, len(snap.Events))
	for _, event := range snap.Events {
		_, taken := s.eventIdx[event.ID]
		_, dup := seenEvents[event.ID]
		if taken || dup || event.ID == "" {
			return fmt.Errorf("%w: event %q", ErrDuplicateID, event.ID)
		}
		seenEvents[event.ID] = struct{}{}
	}
	seenChat := make(map[string]struct{}, len(snap.ChatMessages))
	for _, msg := range snap.ChatMessages {
		_, taken := s.chatIdx[msg.ID]
		_, dup := seenChat[msg.ID]
		if taken || dup || msg.ID == "" {
			return fmt.Errorf("%w: chat message %q", ErrDuplicateID, msg.ID)
		}
		seenChat[msg.ID] = struct{}{}
	}

	for _, issue := range snap.Issues {
		if err := checkStoredIssue(issue); err != nil {
			return err
		}
	}
	for _, event := range snap.Events {
		if err := checkStoredEvent(event); err != nil {
			return err
		}
	}

	for _, issue := range snap.Issues {
		issue.HasUpvoted = false
		rec := &issueRecord{issue: issue, voters: make(map[string]struct{})}
		s.issues = append(s.issues, rec)
		s.issueIdx[issue.ID] = rec
	}
	for _, vote := range snap.Votes {
		s.issueIdx[vote.Issue].voters[vote.User] = struct{}{}
	}
	for _, rec := range s.issues {
		if n := len(rec.voters); rec.issue.Upvotes < n {
			s.log.Warn().Str("issue_id", rec.issue.ID).Int("stored", rec.issue.Upvotes).Int("votes", n).Msg("upvotes raised to vote count")
			rec.issue.Upvotes = n
		}
	}
	for i := range snap.Events {
		event := snap.Events[i]
		s.events = append(s.events, &event)
		s.eventIdx[event.ID] = &event
	}
	for _, msg := range snap.ChatMessages {
		s.chat = append(s.chat, msg)
		s.chatIdx[msg.ID] = struct{}{}
	}

	s.log.Debug().
		Int("issues", len(snap.Issues)).
		Int("votes", len(snap.Votes)).
		Int("events", len(snap.Events)).
		Int("chat_messages", len(snap.ChatMessages)).
		Msg("store restored")
	return nil
}

func checkStoredIssue(issue models.Issue) error {
	switch {
	case !issue.Status.Valid():
		return fmt.Errorf("%w: issue %q has unknown status %q", ErrInvalidInput, issue.ID, issue.Status)
	case issue.Upvotes < 0:
		return fmt.Errorf("%w: issue %q has negative upvotes", ErrInvalidInput, issue.ID)
	}
	return nil
}

func checkStoredEvent(event models.Event) error {
	switch {
	case event.VolunteerSlots < 0 || event.RegisteredVolunteers < 0:
		return fmt.Errorf("%w: event %q has negative volunteer counts", ErrInvalidInput, event.ID)
	case event.RegisteredVolunteers > event.VolunteerSlots:
		return fmt.Errorf("%w: event %q has %d volunteers for %d slots",
			ErrInvalidInput, event.ID, event.RegisteredVolunteers, event.VolunteerSlots)
	}
	return nil
}

// Snapshot copies every collection.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Issues:       make([]models.Issue, 0, len(s.issues)),
		Votes:        []models.Vote{},
		Events:       make([]models.Event, 0, len(s.events)),
		ChatMessages: append([]models.ChatMessage(nil), s.chat...),
	}
	for _, rec := range s.issues {
		snap.Issues = append(snap.Issues, rec.issue)
		for user := range rec.voters {
			snap.Votes = append(snap.Votes, models.Vote{
				ID:    models.VoteID(rec.issue.ID, user),
				Issue: rec.issue.ID,
				User:  user,
			})
		}
	}
	for _, event := range s.events {
		snap.Events = append(snap.Events, *event)
	}
	return snap
}

// nextID draws ids until one is not taken. Callers hold the write lock.
func (s *Store) nextID(taken func(string) bool) string {
	for {
		id := s.newID()
		if id != "" && !taken(id) {
			return id
		}
	}
}

// check runs struct validation and maps failures to a ValidationError.
func (s *Store) check(input any) error {
	if err := s.validate.Struct(input); err != nil {
		return fromValidator(err)
	}
	return nil
}

func (s *Store) mirrorIssue(ctx context.Context, issue models.Issue) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.SaveIssue(ctx, issue); err != nil {
		s.log.Error().Err(err).Str("issue_id", issue.ID).Msg("mirror issue")
	}
}

func (s *Store) mirrorVote(ctx context.Context, vote models.Vote) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.SaveVote(ctx, vote); err != nil {
		s.log.Error().Err(err).Str("vote_id", vote.ID).Msg("mirror vote")
	}
}

func (s *Store) mirrorEvent(ctx context.Context, event models.Event) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.SaveEvent(ctx, event); err != nil {
		s.log.Error().Err(err).Str("event_id", event.ID).Msg("mirror event")
	}
}

func (s *Store) mirrorChat(ctx context.Context, msg models.ChatMessage) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.SaveChatMessage(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("message_id", msg.ID).Msg("mirror chat message")
	}
}
