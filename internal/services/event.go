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

type eventService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	clock            clock.Clock
	logger           *slog.Logger
	contextTimeout   time.Duration
}

func NewEventService(eventRepo domain.EventRepository, registrationRepo domain.RegistrationRepository, clk clock.Clock, logger *slog.Logger, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		clock:            clk,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, organizerID string, in domain.EventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if organizerID == "" {
		return nil, fmt.Errorf("%w: event organizer is required", domain.ErrInvalidInput)
	}
	if in.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be a positive integer", domain.ErrInvalidInput)
	}

	event := domain.NewEvent(in, organizerID, s.clock.Now())
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.InfoContext(ctx, "event created", "event_id", event.ID, "organizer_id", organizerID, "capacity", event.Capacity)
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.EventWithOrganizer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetWithOrganizer(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// ListEvents returns one page of all events, earliest date first.
func (s *eventService) ListEvents(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

// ListEventRegistrations returns one page of an event's registrations, oldest first, and the total count.
func (s *eventService) ListEventRegistrations(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.RegistrationWithUser, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrEventNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	regs, total, err := s.registrationRepo.ListByEventID(ctx, eventID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.RegistrationWithUser{}
	}
	return regs, total, nil
}
