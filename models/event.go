package models

// EventType enum
type EventType string

const (
	Cleanup    EventType = "cleanup"
	Meeting    EventType = "meeting"
	Awareness  EventType = "awareness"
	OtherEvent EventType = "other"
)

// EventDateLayout is the ISO date format events are scheduled with.
const EventDateLayout = "2006-01-02"

// Event is a scheduled community activity. VolunteerSlots of 0 marks an open
// event that takes no registrations.
type Event struct {
	ID                   string    `bson:"_id" json:"id"`
	Title                string    `bson:"title" json:"title"`
	Description          string    `bson:"description" json:"description"`
	Date                 string    `bson:"date" json:"date"`
	Location             string    `bson:"location" json:"location"`
	Type                 EventType `bson:"type" json:"type"`
	VolunteerSlots       int       `bson:"volunteerSlots" json:"volunteerSlots"`
	RegisteredVolunteers int       `bson:"registeredVolunteers" json:"registeredVolunteers"`

	// Revision counts the changes applied to the event.
	Revision int64 `bson:"revision" json:"-"`
}

// AcceptsRegistrations reports whether the event takes volunteers at all.
func (e Event) AcceptsRegistrations() bool {
	return e.VolunteerSlots > 0
}

// Full reports whether every volunteer slot is taken.
func (e Event) Full() bool {
	return e.AcceptsRegistrations() && e.RegisteredVolunteers >= e.VolunteerSlots
}
