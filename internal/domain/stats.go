package domain

import (
	"context"
	"math"
)

// Counts are raw aggregate counts read from storage.
type Counts struct {
	Events        int
	Registrations int
	CheckIns      int
}

// AttendanceRate returns checkIns/registrations as a percentage rounded to one
// decimal place, or 0 when there are no registrations.
func AttendanceRate(checkIns, registrations int) float64 {
	if registrations <= 0 {
		return 0
	}
	rate := float64(checkIns) / float64(registrations) * 100
	return math.Round(rate*10) / 10
}

// DashboardStats are platform-wide counts for the admin dashboard.
// swagger:model DashboardStats
type DashboardStats struct {
	TotalEvents        int     `json:"total_events"`
	TotalRegistrations int     `json:"total_registrations"`
	TotalCheckIns      int     `json:"total_check_ins"`
	AttendanceRate     float64 `json:"attendance_rate"`
}

// EventStats are counts scoped to a single event.
// swagger:model EventStats
type EventStats struct {
	EventID            string  `json:"event_id"`
	EventName          string  `json:"event_name"`
	Capacity           int     `json:"capacity"`
	TotalRegistrations int     `json:"total_registrations"`
	TotalCheckIns      int     `json:"total_check_ins"`
	RemainingCapacity  int     `json:"remaining_capacity"`
	AttendanceRate     float64 `json:"attendance_rate"`
}

// StatsRepository reads aggregate counts.
type StatsRepository interface {
	GlobalCounts(ctx context.Context) (Counts, error)
	// EventCounts fills Registrations and CheckIns for one event.
	EventCounts(ctx context.Context, eventID string) (Counts, error)
}

// StatsInvalidator drops cached statistics touched by a change to eventID.
type StatsInvalidator interface {
	InvalidateEvent(eventID string)
}

// StatsService derives dashboard statistics. Writers call InvalidateEvent so
// cached figures do not outlive the change.
type StatsService interface {
	StatsInvalidator
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
	GetEventStats(ctx context.Context, eventID string) (*EventStats, error)
}
