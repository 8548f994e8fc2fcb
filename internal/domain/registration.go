package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the check-in state of a ticket.
type RegistrationStatus string

const (
	RegistrationStatusRegistered RegistrationStatus = "registered"
	RegistrationStatusCheckedIn  RegistrationStatus = "checked-in"
	RegistrationStatusCancelled  RegistrationStatus = "cancelled"
)

// Registration is an attendee's ticket for an event. At most one exists per (event, user).
// swagger:model Registration
type Registration struct {
	ID           string             `json:"id"`
	EventID      string             `json:"event_id"`
	UserID       string             `json:"user_id"`
	Status       RegistrationStatus `json:"status"`
	RegisteredAt time.Time          `json:"registered_at"`
	CheckedInAt  *time.Time         `json:"checked_in_at"`
	CheckedInBy  *string            `json:"checked_in_by"`
}

// NewRegistration creates a Registration in the registered state. ID is typically set by the repository on create.
func NewRegistration(eventID, userID string, registeredAt time.Time) *Registration {
	return &Registration{
		EventID:      eventID,
		UserID:       userID,
		Status:       RegistrationStatusRegistered,
		RegisteredAt: registeredAt,
	}
}

// TicketWithEvent bundles a registration with the event summary shown in "my tickets".
type TicketWithEvent struct {
	*Registration
	Event *EventSummary `json:"event"`
}

// TicketDetail is a single ticket with its full event and owner.
type TicketDetail struct {
	*Registration
	Event *Event       `json:"event"`
	User  *UserSummary `json:"user"`
}

// RegistrationWithUser bundles a registration with its owner.
type RegistrationWithUser struct {
	*Registration
	User *UserSummary `json:"user"`
}

// ScanRecord is an entry of a staff member's check-in history.
type ScanRecord struct {
	*Registration
	EventName string       `json:"event_name"`
	User      *UserSummary `json:"user"`
}

// CheckInResult is the outcome of a ticket scan. It is also returned together
// with ErrTicketAlreadyUsed so staff can see who entered and when.
type CheckInResult struct {
	TicketID    string             `json:"ticket_id"`
	EventID     string             `json:"event_id"`
	Status      RegistrationStatus `json:"status"`
	CheckedInAt time.Time          `json:"checked_in_at"`
	User        *UserSummary       `json:"user"`
}

// Transactor runs fn inside a storage transaction. Repositories called with the
// context passed to fn take part in it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	// Create inserts reg. A duplicate (event, user) pair yields ErrAlreadyRegistered.
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetWithUser(ctx context.Context, id string) (*RegistrationWithUser, error)
	GetDetail(ctx context.Context, id string) (*TicketDetail, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	// CountByEvent counts registrations of the event in any status.
	CountByEvent(ctx context.Context, eventID string) (int, error)
	ListByUserID(ctx context.Context, userID string) ([]*TicketWithEvent, error)
	ListByEventID(ctx context.Context, eventID string, p PaginationParams) ([]*RegistrationWithUser, int, error)
	ListCheckedInBy(ctx context.Context, staffID string) ([]*ScanRecord, error)
	// MarkCheckedIn moves a registered ticket to checked-in. It reports false when
	// the ticket was not in the registered state at the time of the update.
	MarkCheckedIn(ctx context.Context, id string, at time.Time, staffID string) (bool, error)
	// DeleteUnlessCheckedIn removes the ticket unless it has been checked in.
	// It reports false when nothing was deleted.
	DeleteUnlessCheckedIn(ctx context.Context, id string) (bool, error)
}

// RegistrationService creates registrations for attendees.
type RegistrationService interface {
	RegisterForEvent(ctx context.Context, eventID, userID string) (*Registration, error)
}

// TicketService exposes an attendee's tickets.
type TicketService interface {
	GetMyTickets(ctx context.Context, userID string) ([]*TicketWithEvent, error)
	GetTicketByID(ctx context.Context, ticketID string, caller Identity) (*TicketDetail, error)
	CancelRegistration(ctx context.Context, ticketID, userID string) error
}

// ValidationService performs door check-ins.
type ValidationService interface {
	ValidateTicket(ctx context.Context, ticketID, eventID, staffID string) (*CheckInResult, error)
	GetStaffScanHistory(ctx context.Context, staffID string) ([]*ScanRecord, error)
}
