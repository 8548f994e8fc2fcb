// Package seed loads development fixtures from YAML into the store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"eventcheckin/internal/domain"
)

// File is the fixture document.
type File struct {
	Users         []User         `yaml:"users"`
	Events        []Event        `yaml:"events"`
	Registrations []Registration `yaml:"registrations"`
}

type User struct {
	Name  string      `yaml:"name"`
	Email string      `yaml:"email"`
	Role  domain.Role `yaml:"role"`
}

// Event accepts every schedule shape the API accepts.
type Event struct {
	Name      string `yaml:"name"`
	Desc      string `yaml:"description"`
	Location  string `yaml:"location"`
	ImageURL  string `yaml:"image_url"`
	Capacity  int    `yaml:"capacity"`
	Organizer string `yaml:"organizer"`
	Date      string `yaml:"date"`
	StartTime string `yaml:"start_time"`
	EndTime   string `yaml:"end_time"`
	StartsAt  string `yaml:"starts_at"`
	EndsAt    string `yaml:"ends_at"`
}

// Registration registers the user with Email for the event named Event.
type Registration struct {
	Event string `yaml:"event"`
	Email string `yaml:"email"`
}

// Result lists the ids created or reused while seeding.
type Result struct {
	Users         map[string]string
	Events        map[string]string
	Registrations int
}

// Parse decodes a fixture document. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

type Seeder struct {
	Users         domain.UserRepository
	Events        domain.EventService
	Registrations domain.RegistrationService
	Logger        *slog.Logger
	Now           func() time.Time
}

// Apply creates the fixture's users, events and registrations in that order.
// Existing users (by email) and duplicate registrations are reused.
func (s *Seeder) Apply(ctx context.Context, f *File) (*Result, error) {
	res := &Result{Users: map[string]string{}, Events: map[string]string{}}

	for _, u := range f.Users {
		id, err := s.ensureUser(ctx, u)
		if err != nil {
			return res, err
		}
		res.Users[strings.ToLower(u.Email)] = id
	}

	for _, e := range f.Events {
		organizerID, ok := res.Users[strings.ToLower(e.Organizer)]
		if !ok {
			return res, fmt.Errorf("event %q: unknown organizer %q", e.Name, e.Organizer)
		}
		schedule, err := domain.ParseScheduleInput(e.Date, e.StartTime, e.EndTime, e.StartsAt, e.EndsAt)
		if err != nil {
			return res, fmt.Errorf("event %q: %w", e.Name, err)
		}
		in, err := domain.EventPayload{
			Name:        e.Name,
			Description: e.Desc,
			Location:    e.Location,
			ImageURL:    e.ImageURL,
			Capacity:    e.Capacity,
			Schedule:    schedule,
		}.Normalize()
		if err != nil {
			return res, fmt.Errorf("event %q: %w", e.Name, err)
		}
		created, err := s.Events.CreateEvent(ctx, organizerID, in)
		if err != nil {
			return res, fmt.Errorf("event %q: %w", e.Name, err)
		}
		res.Events[e.Name] = created.ID
		s.Logger.InfoContext(ctx, "seeded event", "name", e.Name, "id", created.ID)
	}

	for _, r := range f.Registrations {
		eventID, ok := res.Events[r.Event]
		if !ok {
			return res, fmt.Errorf("registration: unknown event %q", r.Event)
		}
		userID, ok := res.Users[strings.ToLower(r.Email)]
		if !ok {
			return res, fmt.Errorf("registration: unknown user %q", r.Email)
		}
		if _, err := s.Registrations.RegisterForEvent(ctx, eventID, userID); err != nil {
			if errors.Is(err, domain.ErrAlreadyRegistered) {
				continue
			}
			return res, fmt.Errorf("register %s for %q: %w", r.Email, r.Event, err)
		}
		res.Registrations++
	}
	return res, nil
}

func (s *Seeder) ensureUser(ctx context.Context, u User) (string, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	if email == "" {
		return "", fmt.Errorf("%w: user %q has no email", domain.ErrInvalidInput, u.Name)
	}
	role := u.Role
	if role == "" {
		role = domain.RoleAttendee
	}
	if !role.Valid() {
		return "", fmt.Errorf("%w: user %s has unknown role %q", domain.ErrInvalidInput, email, role)
	}

	user := domain.NewUser(u.Name, email, role, s.Now())
	err := s.Users.Create(ctx, user)
	if errors.Is(err, domain.ErrDuplicateEmail) {
		existing, err := s.Users.GetByEmail(ctx, email)
		if err != nil {
			return "", fmt.Errorf("get user %s: %w", email, err)
		}
		return existing.ID, nil
	}
	if err != nil {
		return "", fmt.Errorf("create user %s: %w", email, err)
	}
	s.Logger.InfoContext(ctx, "seeded user", "email", email, "role", role, "id", user.ID)
	return user.ID, nil
}
