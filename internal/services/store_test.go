package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"eventcheckin/internal/domain"
)

// memStore is an in-memory stand-in for the postgres repositories. Its
// transactor serializes transactions the way the event row lock does.
type memStore struct {
	txMu sync.Mutex

	mu     sync.Mutex
	seq    int
	events map[string]*domain.Event
	users  map[string]*domain.User
	regs   map[string]*domain.Registration
	err    error
}

func newMemStore() *memStore {
	return &memStore{
		events: map[string]*domain.Event{},
		users:  map[string]*domain.User{},
		regs:   map[string]*domain.Registration{},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (m *memStore) addEvent(id string, capacity int) *domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &domain.Event{ID: id, Name: "Event " + id, Capacity: capacity, Status: domain.EventStatusUpcoming}
	m.events[id] = e
	return e
}

func (m *memStore) addUser(id string, role domain.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = &domain.User{ID: id, Name: "User " + id, Email: id + "@example.com", Role: role}
}

func (m *memStore) addRegistration(reg *domain.Registration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *reg
	m.regs[reg.ID] = &cp
}

func (m *memStore) registration(id string) (*domain.Registration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.regs[id]
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}

func (m *memStore) countFor(eventID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.regs {
		if r.EventID == eventID {
			n++
		}
	}
	return n
}

func (m *memStore) summary(userID string) *domain.UserSummary {
	u, ok := m.users[userID]
	if !ok {
		return nil
	}
	return &domain.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Transactor

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx)
}

// eventRepo adapts memStore to domain.EventRepository.
type eventRepo struct{ *memStore }

func (r eventRepo) Create(ctx context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.seq++
	e.ID = fmt.Sprintf("ev-%d", r.seq)
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r eventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r eventRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return r.GetByID(ctx, id)
}

func (r eventRepo) GetWithOrganizer(ctx context.Context, id string) (*domain.EventWithOrganizer, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return &domain.EventWithOrganizer{Event: e, Organizer: r.summary(e.OrganizerID)}, nil
}

func (r eventRepo) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, 0, r.err
	}
	all := make([]*domain.Event, 0, len(r.events))
	for _, e := range r.events {
		cp := *e
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.Before(all[j].Date)
		}
		return all[i].ID < all[j].ID
	})
	total := len(all)
	start := min(p.Offset(), total)
	end := total
	if p.Limit() > 0 {
		end = min(start+p.Limit(), total)
	}
	return all[start:end], total, nil
}

// registrationRepo adapts memStore to domain.RegistrationRepository.
type registrationRepo struct{ *memStore }

func (r registrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, existing := range r.regs {
		if existing.EventID == reg.EventID && existing.UserID == reg.UserID {
			return domain.ErrAlreadyRegistered
		}
	}
	r.seq++
	reg.ID = fmt.Sprintf("tk-%d", r.seq)
	cp := *reg
	r.regs[reg.ID] = &cp
	return nil
}

func (r registrationRepo) get(id string) (*domain.Registration, error) {
	if r.err != nil {
		return nil, r.err
	}
	reg, ok := r.regs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *reg
	return &cp, nil
}

func (r registrationRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r registrationRepo) GetWithUser(ctx context.Context, id string) (*domain.RegistrationWithUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return &domain.RegistrationWithUser{Registration: reg, User: r.summary(reg.UserID)}, nil
}

func (r registrationRepo) GetDetail(ctx context.Context, id string) (*domain.TicketDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, err := r.get(id)
	if err != nil {
		return nil, err
	}
	var ev *domain.Event
	if e, ok := r.events[reg.EventID]; ok {
		cp := *e
		ev = &cp
	}
	return &domain.TicketDetail{Registration: reg, Event: ev, User: r.summary(reg.UserID)}, nil
}

func (r registrationRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, reg := range r.regs {
		if reg.EventID == eventID && reg.UserID == userID {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r registrationRepo) CountByEvent(ctx context.Context, eventID string) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.countFor(eventID), nil
}

func (r registrationRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.TicketWithEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*domain.TicketWithEvent
	for _, reg := range r.regs {
		if reg.UserID != userID {
			continue
		}
		cp := *reg
		t := &domain.TicketWithEvent{Registration: &cp}
		if e, ok := r.events[reg.EventID]; ok {
			t.Event = e.Summary()
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.After(out[j].RegisteredAt) })
	return out, nil
}

func (r registrationRepo) ListByEventID(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.RegistrationWithUser, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, 0, r.err
	}
	var all []*domain.RegistrationWithUser
	for _, reg := range r.regs {
		if reg.EventID != eventID {
			continue
		}
		cp := *reg
		all = append(all, &domain.RegistrationWithUser{Registration: &cp, User: r.summary(reg.UserID)})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RegisteredAt.Before(all[j].RegisteredAt) })
	total := len(all)
	start := min(p.Offset(), total)
	end := total
	if p.Limit() > 0 {
		end = min(start+p.Limit(), total)
	}
	return all[start:end], total, nil
}

func (r registrationRepo) ListCheckedInBy(ctx context.Context, staffID string) ([]*domain.ScanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*domain.ScanRecord
	for _, reg := range r.regs {
		if reg.CheckedInBy == nil || *reg.CheckedInBy != staffID {
			continue
		}
		cp := *reg
		rec := &domain.ScanRecord{Registration: &cp, User: r.summary(reg.UserID)}
		if e, ok := r.events[reg.EventID]; ok {
			rec.EventName = e.Name
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckedInAt.After(*out[j].CheckedInAt) })
	return out, nil
}

func (r registrationRepo) MarkCheckedIn(ctx context.Context, id string, at time.Time, staffID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	reg, ok := r.regs[id]
	if !ok || reg.Status != domain.RegistrationStatusRegistered {
		return false, nil
	}
	reg.Status = domain.RegistrationStatusCheckedIn
	reg.CheckedInAt = &at
	reg.CheckedInBy = &staffID
	return true, nil
}

func (r registrationRepo) DeleteUnlessCheckedIn(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	reg, ok := r.regs[id]
	if !ok || reg.Status == domain.RegistrationStatusCheckedIn {
		return false, nil
	}
	delete(r.regs, id)
	return true, nil
}

// statsRepo adapts memStore to domain.StatsRepository and counts calls.
type statsRepo struct {
	*memStore
	calls *int
}

func (r statsRepo) GlobalCounts(ctx context.Context) (domain.Counts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.calls++
	if r.err != nil {
		return domain.Counts{}, r.err
	}
	c := domain.Counts{Events: len(r.events), Registrations: len(r.regs)}
	for _, reg := range r.regs {
		if reg.Status == domain.RegistrationStatusCheckedIn {
			c.CheckIns++
		}
	}
	return c, nil
}

func (r statsRepo) EventCounts(ctx context.Context, eventID string) (domain.Counts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.calls++
	if r.err != nil {
		return domain.Counts{}, r.err
	}
	c := domain.Counts{Events: 1}
	for _, reg := range r.regs {
		if reg.EventID != eventID {
			continue
		}
		c.Registrations++
		if reg.Status == domain.RegistrationStatusCheckedIn {
			c.CheckIns++
		}
	}
	return c, nil
}
