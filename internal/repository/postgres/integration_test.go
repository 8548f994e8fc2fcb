package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcheckin/internal/clock"
	"eventcheckin/internal/domain"
	"eventcheckin/internal/services"
	"eventcheckin/internal/testutil"
)

func TestIntegration_RegistrationCapacityUnderRace(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	organizer := testutil.InsertUser(t, db, "org@example.com", "admin")
	const capacity, attempts = 3, 12
	eventID := testutil.InsertEvent(t, db, organizer, capacity)
	users := make([]string, attempts)
	for i := range users {
		users[i] = testutil.InsertUser(t, db, fmt.Sprintf("u%d@example.com", i), "attendee")
	}

	svc := services.NewRegistrationService(NewTransactor(db), NewEventRepository(db), NewRegistrationRepository(db), nil, clock.NewSystem(), logger, 10*time.Second)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		full int
	)
	for _, u := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := svc.RegisterForEvent(ctx, eventID, userID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrEventFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(u)
	}
	wg.Wait()

	assert.Equal(t, capacity, ok)
	assert.Equal(t, attempts-capacity, full)
	n, err := NewRegistrationRepository(db).CountByEvent(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, capacity, n)
}

func TestIntegration_DuplicateRegistrationRace(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	organizer := testutil.InsertUser(t, db, "org@example.com", "admin")
	eventID := testutil.InsertEvent(t, db, organizer, 100)
	userID := testutil.InsertUser(t, db, "u@example.com", "attendee")
	repo := NewRegistrationRepository(db)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, domain.NewRegistration(eventID, userID, time.Now()))
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)
	}
	assert.Equal(t, 1, created)
}

func TestIntegration_ConcurrentCheckIn(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	organizer := testutil.InsertUser(t, db, "org@example.com", "admin")
	staff := testutil.InsertUser(t, db, "staff@example.com", "staff")
	attendee := testutil.InsertUser(t, db, "a@example.com", "attendee")
	eventID := testutil.InsertEvent(t, db, organizer, 10)

	regRepo := NewRegistrationRepository(db)
	reg := domain.NewRegistration(eventID, attendee, time.Now().UTC())
	require.NoError(t, regRepo.Create(ctx, reg))

	svc := services.NewValidationService(regRepo, nil, clock.NewSystem(), logger, 10*time.Second)

	results := make(chan error, 10)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ValidateTicket(ctx, reg.ID, eventID, staff)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrTicketAlreadyUsed)
	}
	assert.Equal(t, 1, succeeded)

	stored, err := regRepo.GetByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationStatusCheckedIn, stored.Status)
	require.NotNil(t, stored.CheckedInBy)
	assert.Equal(t, staff, *stored.CheckedInBy)

	stats, err := NewStatsRepository(db).EventCounts(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, domain.Counts{Events: 1, Registrations: 1, CheckIns: 1}, stats)
}
