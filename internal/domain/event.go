package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle status of an event.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Valid reports whether s is a known event status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusUpcoming, EventStatusOngoing, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

// Event represents an event attendees can register for.
// Date holds the calendar day only; StartTime and EndTime are local wall-clock "HH:MM" values.
// swagger:model Event
type Event struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Date        time.Time   `json:"date"`
	StartTime   string      `json:"start_time,omitempty"`
	EndTime     string      `json:"end_time,omitempty"`
	ImageURL    string      `json:"image_url,omitempty"`
	Capacity    int         `json:"capacity"`
	OrganizerID string      `json:"organizer_id"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewEvent returns a new upcoming Event built from a normalized input. ID is typically set by the repository on create.
func NewEvent(in EventInput, organizerID string, createdAt time.Time) *Event {
	return &Event{
		Name:        in.Name,
		Description: in.Description,
		Location:    in.Location,
		Date:        in.Schedule.Date,
		StartTime:   in.Schedule.StartTime,
		EndTime:     in.Schedule.EndTime,
		ImageURL:    in.ImageURL,
		Capacity:    in.Capacity,
		OrganizerID: organizerID,
		Status:      EventStatusUpcoming,
		CreatedAt:   createdAt,
	}
}

// Summary returns the subset of the event shown on a ticket list.
func (e *Event) Summary() *EventSummary {
	return &EventSummary{
		ID:        e.ID,
		Name:      e.Name,
		Date:      e.Date,
		Location:  e.Location,
		StartTime: e.StartTime,
		ImageURL:  e.ImageURL,
		Status:    e.Status,
	}
}

// EventSummary is the event data joined onto an attendee's ticket list.
// swagger:model EventSummary
type EventSummary struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Date      time.Time   `json:"date"`
	Location  string      `json:"location"`
	StartTime string      `json:"start_time,omitempty"`
	ImageURL  string      `json:"image_url,omitempty"`
	Status    EventStatus `json:"status"`
}

// EventWithOrganizer bundles an event with its organizer's public profile.
type EventWithOrganizer struct {
	*Event
	Organizer *UserSummary `json:"organizer,omitempty"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetByIDForUpdate locks the event row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*Event, error)
	GetWithOrganizer(ctx context.Context, id string) (*EventWithOrganizer, error)
	// List returns one page of events by date ascending and the total count.
	List(ctx context.Context, p PaginationParams) ([]*Event, int, error)
}

// EventService defines organizer/admin operations on events.
type EventService interface {
	CreateEvent(ctx context.Context, organizerID string, in EventInput) (*Event, error)
	GetEvent(ctx context.Context, eventID string) (*EventWithOrganizer, error)
	ListEvents(ctx context.Context, p PaginationParams) ([]*Event, int, error)
	ListEventRegistrations(ctx context.Context, eventID string, p PaginationParams) ([]*RegistrationWithUser, int, error)
}
