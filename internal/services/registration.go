package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventcheckin/internal/clock"
	"eventcheckin/internal/domain"
)

type registrationService struct {
	tx               domain.Transactor
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	stats            domain.StatsInvalidator
	clock            clock.Clock
	logger           *slog.Logger
	contextTimeout   time.Duration
}

// NewRegistrationService creates a RegistrationService. Capacity and duplicate
// checks run inside a transaction that holds the event row lock.
func NewRegistrationService(
	tx domain.Transactor,
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	stats domain.StatsInvalidator,
	clk clock.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		tx:               tx,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		stats:            stats,
		clock:            clk,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

func (s *registrationService) RegisterForEvent(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var reg *domain.Registration
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrEventNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}

		if _, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID); err == nil {
			return domain.ErrAlreadyRegistered
		} else if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get registration: %w", err)
		}

		count, err := s.registrationRepo.CountByEvent(ctx, eventID)
		if err != nil {
			return fmt.Errorf("count registrations: %w", err)
		}
		if count >= event.Capacity {
			return domain.ErrEventFull
		}

		r := domain.NewRegistration(eventID, userID, s.clock.Now())
		if err := s.registrationRepo.Create(ctx, r); err != nil {
			if errors.Is(err, domain.ErrAlreadyRegistered) {
				return err
			}
			return fmt.Errorf("create registration: %w", err)
		}
		reg = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateStats(s.stats, eventID)
	s.logger.InfoContext(ctx, "registered for event", "event_id", eventID, "user_id", userID, "ticket_id", reg.ID)
	return reg, nil
}
