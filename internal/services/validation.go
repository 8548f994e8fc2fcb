package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventcheckin/internal/clock"
	"eventcheckin/internal/domain"
)

type validationService struct {
	registrationRepo domain.RegistrationRepository
	stats            domain.StatsInvalidator
	clock            clock.Clock
	logger           *slog.Logger
	contextTimeout   time.Duration
}

func NewValidationService(registrationRepo domain.RegistrationRepository, stats domain.StatsInvalidator, clk clock.Clock, logger *slog.Logger, timeout time.Duration) domain.ValidationService {
	return &validationService{
		registrationRepo: registrationRepo,
		stats:            stats,
		clock:            clk,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

// ValidateTicket checks a ticket in at the door of eventID.
//
// The checks run in order: the ticket must exist, belong to eventID, and not be
// checked in or cancelled. The final transition is a conditional update on the
// registered status, so of several concurrent scans exactly one succeeds and
// the rest see ErrTicketAlreadyUsed. With ErrTicketAlreadyUsed the returned
// result carries the original check-in time and attendee.
func (s *validationService) ValidateTicket(ctx context.Context, ticketID, eventID, staffID string) (*domain.CheckInResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.lookup(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !sameID(reg.EventID, eventID) {
		s.logger.WarnContext(ctx, "ticket scanned at wrong event", "ticket_id", ticketID, "event_id", eventID, "ticket_event_id", reg.EventID, "staff_id", staffID)
		return nil, domain.ErrTicketEventMismatch
	}
	if res, err := classify(reg); err != nil {
		return res, err
	}

	now := s.clock.Now()
	ok, err := s.registrationRepo.MarkCheckedIn(ctx, ticketID, now, staffID)
	if err != nil {
		return nil, fmt.Errorf("check in ticket: %w", err)
	}
	if !ok {
		// Lost a race with a concurrent scan or cancellation.
		current, err := s.lookup(ctx, ticketID)
		if err != nil {
			return nil, err
		}
		if res, err := classify(current); err != nil {
			return res, err
		}
		return nil, fmt.Errorf("check in ticket %s: status unchanged", ticketID)
	}

	invalidateStats(s.stats, reg.EventID)
	s.logger.InfoContext(ctx, "ticket checked in", "ticket_id", ticketID, "event_id", eventID, "staff_id", staffID)
	return &domain.CheckInResult{
		TicketID:    reg.ID,
		EventID:     reg.EventID,
		Status:      domain.RegistrationStatusCheckedIn,
		CheckedInAt: now,
		User:        reg.User,
	}, nil
}

func (s *validationService) lookup(ctx context.Context, ticketID string) (*domain.RegistrationWithUser, error) {
	reg, err := s.registrationRepo.GetWithUser(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidTicket
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return reg, nil
}

// sameID compares two ids as UUIDs, which are case-insensitive.
func sameID(a, b string) bool {
	return strings.EqualFold(a, b)
}

// classify returns the error for a ticket that can no longer be checked in.
func classify(reg *domain.RegistrationWithUser) (*domain.CheckInResult, error) {
	switch reg.Status {
	case domain.RegistrationStatusCheckedIn:
		res := &domain.CheckInResult{
			TicketID: reg.ID,
			EventID:  reg.EventID,
			Status:   reg.Status,
			User:     reg.User,
		}
		if reg.CheckedInAt != nil {
			res.CheckedInAt = *reg.CheckedInAt
		}
		return res, domain.ErrTicketAlreadyUsed
	case domain.RegistrationStatusCancelled:
		return nil, domain.ErrTicketCancelled
	}
	return nil, nil
}

func (s *validationService) GetStaffScanHistory(ctx context.Context, staffID string) ([]*domain.ScanRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	records, err := s.registrationRepo.ListCheckedInBy(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	if records == nil {
		records = []*domain.ScanRecord{}
	}
	return records, nil
}
