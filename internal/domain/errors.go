package domain

import "errors"

// Sentinel errors shared by repositories and services.
var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller's identity or role does not grant access.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput is returned when the request is invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// Registration and check-in errors.
var (
	ErrEventNotFound       = errors.New("event not found")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrInvalidTicket       = errors.New("invalid ticket")
	ErrAlreadyRegistered   = errors.New("already registered")
	ErrEventFull           = errors.New("event full")
	ErrTicketEventMismatch = errors.New("ticket does not belong to this event")
	ErrTicketAlreadyUsed   = errors.New("ticket already used")
	ErrTicketCancelled     = errors.New("ticket cancelled")
)

// IsConflict reports whether err is a business-rule violation on current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyRegistered) ||
		errors.Is(err, ErrEventFull) ||
		errors.Is(err, ErrTicketEventMismatch) ||
		errors.Is(err, ErrTicketAlreadyUsed) ||
		errors.Is(err, ErrTicketCancelled)
}

// IsNotFound reports whether err means a referenced entity is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrTicketNotFound) ||
		errors.Is(err, ErrInvalidTicket)
}
