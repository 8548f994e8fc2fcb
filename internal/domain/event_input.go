package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Schedule is the normalized calendar date and local wall-clock times of an event.
type Schedule struct {
	Date      time.Time
	StartTime string
	EndTime   string
}

// ScheduleInput is one of the accepted schedule payload shapes:
// SplitSchedule, TimestampDateSchedule or RangeSchedule.
type ScheduleInput interface {
	normalize() (Schedule, error)
}

// SplitSchedule is a calendar date with optional "HH:MM" start and end times.
type SplitSchedule struct {
	Date      string
	StartTime string
	EndTime   string
}

// TimestampDateSchedule is a date sent as a full timestamp. The start time is
// taken from its wall clock unless given explicitly.
type TimestampDateSchedule struct {
	At        time.Time
	StartTime string
	EndTime   string
}

// RangeSchedule is the legacy shape: start and optional end timestamps.
type RangeSchedule struct {
	StartsAt time.Time
	EndsAt   *time.Time
}

// ParseScheduleInput selects the schedule shape of a raw payload. startsAt and
// endsAt select RangeSchedule; otherwise date selects SplitSchedule when it is a
// calendar date and TimestampDateSchedule when it is an RFC 3339 timestamp.
func ParseScheduleInput(date, startTime, endTime, startsAt, endsAt string) (ScheduleInput, error) {
	date = strings.TrimSpace(date)
	startTime = strings.TrimSpace(startTime)
	endTime = strings.TrimSpace(endTime)
	startsAt = strings.TrimSpace(startsAt)
	endsAt = strings.TrimSpace(endsAt)

	if startsAt != "" || endsAt != "" {
		if date != "" || startTime != "" || endTime != "" {
			return nil, fmt.Errorf("%w: starts_at cannot be combined with date, start_time or end_time", ErrInvalidInput)
		}
		if startsAt == "" {
			return nil, fmt.Errorf("%w: ends_at requires starts_at", ErrInvalidInput)
		}
		start, err := time.Parse(time.RFC3339, startsAt)
		if err != nil {
			return nil, fmt.Errorf("%w: starts_at must be an RFC 3339 timestamp", ErrInvalidInput)
		}
		in := RangeSchedule{StartsAt: start}
		if endsAt != "" {
			end, err := time.Parse(time.RFC3339, endsAt)
			if err != nil {
				return nil, fmt.Errorf("%w: ends_at must be an RFC 3339 timestamp", ErrInvalidInput)
			}
			in.EndsAt = &end
		}
		return in, nil
	}

	if date == "" {
		return nil, fmt.Errorf("%w: date or starts_at is required", ErrInvalidInput)
	}
	if _, err := time.Parse(dateLayout, date); err == nil {
		return SplitSchedule{Date: date, StartTime: startTime, EndTime: endTime}, nil
	}
	at, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD or an RFC 3339 timestamp", ErrInvalidInput)
	}
	return TimestampDateSchedule{At: at, StartTime: startTime, EndTime: endTime}, nil
}

// NormalizeSchedule resolves any accepted shape into a Schedule.
func NormalizeSchedule(in ScheduleInput) (Schedule, error) {
	if in == nil {
		return Schedule{}, fmt.Errorf("%w: schedule is required", ErrInvalidInput)
	}
	return in.normalize()
}

func (s SplitSchedule) normalize() (Schedule, error) {
	d, err := time.Parse(dateLayout, s.Date)
	if err != nil {
		return Schedule{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if err := checkClock("start_time", s.StartTime); err != nil {
		return Schedule{}, err
	}
	if err := checkClock("end_time", s.EndTime); err != nil {
		return Schedule{}, err
	}
	return Schedule{Date: d, StartTime: s.StartTime, EndTime: s.EndTime}, nil
}

func (s TimestampDateSchedule) normalize() (Schedule, error) {
	start := s.StartTime
	if start == "" {
		start = s.At.Format(clockLayout)
	}
	if err := checkClock("start_time", start); err != nil {
		return Schedule{}, err
	}
	if err := checkClock("end_time", s.EndTime); err != nil {
		return Schedule{}, err
	}
	return Schedule{Date: calendarDay(s.At), StartTime: start, EndTime: s.EndTime}, nil
}

func (s RangeSchedule) normalize() (Schedule, error) {
	out := Schedule{Date: calendarDay(s.StartsAt), StartTime: s.StartsAt.Format(clockLayout)}
	if s.EndsAt != nil {
		if s.EndsAt.Before(s.StartsAt) {
			return Schedule{}, fmt.Errorf("%w: ends_at must not be before starts_at", ErrInvalidInput)
		}
		out.EndTime = s.EndsAt.In(s.StartsAt.Location()).Format(clockLayout)
	}
	return out, nil
}

func checkClock(field, v string) error {
	if v == "" {
		return nil
	}
	if _, err := time.Parse(clockLayout, v); err != nil {
		return fmt.Errorf("%w: %s must be HH:MM", ErrInvalidInput, field)
	}
	return nil
}

// calendarDay drops the clock of t, keeping the day as seen in t's own zone.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EventPayload is a create-event request before normalization.
type EventPayload struct {
	Name        string
	Description string
	Location    string
	ImageURL    string
	Capacity    int
	Schedule    ScheduleInput
}

// EventInput is a validated, normalized create-event request.
type EventInput struct {
	Name        string
	Description string
	Location    string
	ImageURL    string
	Capacity    int
	Schedule    Schedule
}

// Normalize resolves the schedule shape and validates the remaining fields.
func (p EventPayload) Normalize() (EventInput, error) {
	schedule, err := NormalizeSchedule(p.Schedule)
	if err != nil {
		return EventInput{}, err
	}
	in := EventInput{
		Name:        strings.TrimSpace(p.Name),
		Description: strings.TrimSpace(p.Description),
		Location:    strings.TrimSpace(p.Location),
		ImageURL:    strings.TrimSpace(p.ImageURL),
		Capacity:    p.Capacity,
		Schedule:    schedule,
	}
	switch {
	case in.Name == "":
		return EventInput{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case in.Description == "":
		return EventInput{}, fmt.Errorf("%w: description is required", ErrInvalidInput)
	case in.Location == "":
		return EventInput{}, fmt.Errorf("%w: location is required", ErrInvalidInput)
	case in.Capacity <= 0:
		return EventInput{}, fmt.Errorf("%w: capacity must be a positive integer", ErrInvalidInput)
	}
	return in, nil
}
