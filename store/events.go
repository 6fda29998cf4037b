package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"civicsync-be/models"
)

type CreateEventInput struct {
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description" validate:"required"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Location       string `json:"location" validate:"required"`
	Type           string `json:"type" validate:"required,oneof=cleanup meeting awareness other"`
	VolunteerSlots *int   `json:"volunteerSlots" validate:"required,gte=0"`
}

// CreateEvent appends a new event with no registered volunteers.
func (s *Store) CreateEvent(ctx context.Context, input CreateEventInput) (models.Event, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Date = strings.TrimSpace(input.Date)
	input.Location = strings.TrimSpace(input.Location)
	input.Type = strings.TrimSpace(input.Type)

	if err := s.check(input); err != nil {
		return models.Event{}, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.Event{}, ErrClosed
	}
	event := &models.Event{
		ID:                   s.nextID(func(id string) bool { _, ok := s.eventIdx[id]; return ok }),
		Title:                input.Title,
		Description:          input.Description,
		Date:                 input.Date,
		Location:             input.Location,
		Type:                 models.EventType(input.Type),
		VolunteerSlots:       *input.VolunteerSlots,
		RegisteredVolunteers: 0,
		Revision:             1,
	}
	s.events = append(s.events, event)
	s.eventIdx[event.ID] = event
	created := *event
	s.mu.Unlock()

	s.log.Info().Str("event_id", created.ID).Str("date", created.Date).Msg("event created")
	s.mirrorEvent(ctx, created)
	return created, nil
}

// RegisterForEvent takes one volunteer slot. Open events (no slots) and full
// events refuse the registration and stay unchanged.
func (s *Store) RegisterForEvent(ctx context.Context, id string) (models.Event, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.Event{}, ErrClosed
	}
	event, ok := s.eventIdx[id]
	if !ok {
		s.mu.Unlock()
		return models.Event{}, ErrEventNotFound
	}
	if !event.AcceptsRegistrations() {
		s.mu.Unlock()
		return models.Event{}, ErrRegistrationClosed
	}
	if event.Full() {
		s.mu.Unlock()
		return models.Event{}, ErrEventFull
	}
	event.RegisteredVolunteers++
	event.Revision++
	updated := *event
	s.mu.Unlock()

	s.mirrorEvent(ctx, updated)
	return updated, nil
}

// Event returns a single event.
func (s *Store) Event(id string) (models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.eventIdx[id]
	if !ok {
		return models.Event{}, ErrEventNotFound
	}
	return *event, nil
}

// Events lists every event in creation order.
func (s *Store) Events() []models.Event {
	return s.selectEvents(func(models.Event) bool { return true })
}

// EventsOn lists the events scheduled on date (YYYY-MM-DD).
func (s *Store) EventsOn(date string) []models.Event {
	return s.selectEvents(func(e models.Event) bool { return e.Date == date })
}

// EventsInMonth lists the events of one calendar month.
func (s *Store) EventsInMonth(year int, month time.Month) []models.Event {
	return s.selectEvents(func(e models.Event) bool {
		d, err := time.Parse(models.EventDateLayout, e.Date)
		return err == nil && d.Year() == year && d.Month() == month
	})
}

// UpcomingEvents returns at most n events dated on or after from's day,
// soonest first. n <= 0 returns all of them.
func (s *Store) UpcomingEvents(from time.Time, n int) []models.Event {
	day := from.Format(models.EventDateLayout)
	out := s.selectEvents(func(e models.Event) bool { return e.Date >= day })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func (s *Store) selectEvents(keep func(models.Event) bool) []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Event, 0, len(s.events))
	for _, event := range s.events {
		if keep(*event) {
			out = append(out, *event)
		}
	}
	return out
}
