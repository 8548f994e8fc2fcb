package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventcheckin/internal/domain"
)

type ticketService struct {
	registrationRepo domain.RegistrationRepository
	stats            domain.StatsInvalidator
	logger           *slog.Logger
	contextTimeout   time.Duration
}

func NewTicketService(registrationRepo domain.RegistrationRepository, stats domain.StatsInvalidator, logger *slog.Logger, timeout time.Duration) domain.TicketService {
	return &ticketService{
		registrationRepo: registrationRepo,
		stats:            stats,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

func (s *ticketService) GetMyTickets(ctx context.Context, userID string) ([]*domain.TicketWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tickets, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	if tickets == nil {
		tickets = []*domain.TicketWithEvent{}
	}
	return tickets, nil
}

// GetTicketByID returns the ticket to its owner or to an admin.
func (s *ticketService) GetTicketByID(ctx context.Context, ticketID string, caller domain.Identity) (*domain.TicketDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ticket, err := s.registrationRepo.GetDetail(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if !sameID(ticket.UserID, caller.UserID) && !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return ticket, nil
}

// CancelRegistration deletes the caller's own ticket. Admins get no override
// here. A ticket that has been checked in cannot be cancelled.
func (s *ticketService) CancelRegistration(ctx context.Context, ticketID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.registrationRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrTicketNotFound
		}
		return fmt.Errorf("get ticket: %w", err)
	}
	if !sameID(reg.UserID, userID) {
		return domain.ErrForbidden
	}

	deleted, err := s.registrationRepo.DeleteUnlessCheckedIn(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if !deleted {
		// Either a scan or another cancel got there first.
		current, err := s.registrationRepo.GetByID(ctx, ticketID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrTicketNotFound
			}
			return fmt.Errorf("get ticket: %w", err)
		}
		if current.Status == domain.RegistrationStatusCheckedIn {
			return domain.ErrTicketAlreadyUsed
		}
		return fmt.Errorf("delete registration %s: no row removed", ticketID)
	}

	invalidateStats(s.stats, reg.EventID)
	s.logger.InfoContext(ctx, "registration cancelled", "ticket_id", ticketID, "user_id", userID)
	return nil
}
