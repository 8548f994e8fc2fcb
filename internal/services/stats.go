package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"eventcheckin/internal/domain"
)

const dashboardCacheKey = "dashboard"

type statsService struct {
	statsRepo      domain.StatsRepository
	eventRepo      domain.EventRepository
	cache          *cache.Cache
	contextTimeout time.Duration
}

// NewStatsService creates a StatsService. Results are cached for ttl; a zero
// ttl disables caching.
func NewStatsService(statsRepo domain.StatsRepository, eventRepo domain.EventRepository, ttl, timeout time.Duration) domain.StatsService {
	s := &statsService{
		statsRepo:      statsRepo,
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

func (s *statsService) GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	if v, ok := s.cached(dashboardCacheKey); ok {
		return v.(*domain.DashboardStats), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	c, err := s.statsRepo.GlobalCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("global counts: %w", err)
	}
	stats := &domain.DashboardStats{
		TotalEvents:        c.Events,
		TotalRegistrations: c.Registrations,
		TotalCheckIns:      c.CheckIns,
		AttendanceRate:     domain.AttendanceRate(c.CheckIns, c.Registrations),
	}
	s.store(dashboardCacheKey, stats)
	return stats, nil
}

func (s *statsService) GetEventStats(ctx context.Context, eventID string) (*domain.EventStats, error) {
	key := eventCacheKey(eventID)
	if v, ok := s.cached(key); ok {
		return v.(*domain.EventStats), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	c, err := s.statsRepo.EventCounts(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event counts: %w", err)
	}
	stats := &domain.EventStats{
		EventID:            event.ID,
		EventName:          event.Name,
		Capacity:           event.Capacity,
		TotalRegistrations: c.Registrations,
		TotalCheckIns:      c.CheckIns,
		RemainingCapacity:  max(0, event.Capacity-c.Registrations),
		AttendanceRate:     domain.AttendanceRate(c.CheckIns, c.Registrations),
	}
	s.store(key, stats)
	return stats, nil
}

// InvalidateEvent drops the event's cached stats and the dashboard, which
// aggregates over every event.
func (s *statsService) InvalidateEvent(eventID string) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(eventCacheKey(eventID))
	s.cache.Delete(dashboardCacheKey)
}

func eventCacheKey(eventID string) string { return "event:" + eventID }

// invalidateStats tolerates a nil invalidator.
func invalidateStats(inv domain.StatsInvalidator, eventID string) {
	if inv != nil {
		inv.InvalidateEvent(eventID)
	}
}

func (s *statsService) cached(key string) (any, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *statsService) store(key string, v any) {
	if s.cache != nil {
		s.cache.SetDefault(key, v)
	}
}
