package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eventcheckin/internal/delivery/http/middleware"
	"eventcheckin/internal/domain"
)

const (
	eventUUID  = "0b8f1c0e-6a2b-4d7e-9a51-3f3a2c1d0e01"
	ticketUUID = "5d2e7f10-8c3b-4a9e-b1f2-6e7d8c9b0a02"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

func withIdentity(r *http.Request, userID string, role domain.Role) *http.Request {
	return r.WithContext(middleware.SetIdentity(r.Context(), domain.Identity{UserID: userID, Role: role}))
}

type fakeRegistrationService struct {
	reg     *domain.Registration
	err     error
	eventID string
	userID  string
}

func (f *fakeRegistrationService) RegisterForEvent(_ context.Context, eventID, userID string) (*domain.Registration, error) {
	f.eventID, f.userID = eventID, userID
	return f.reg, f.err
}

type fakeTicketService struct {
	tickets   []*domain.TicketWithEvent
	detail    *domain.TicketDetail
	err       error
	caller    domain.Identity
	cancelled string
}

func (f *fakeTicketService) GetMyTickets(_ context.Context, userID string) ([]*domain.TicketWithEvent, error) {
	f.caller.UserID = userID
	return f.tickets, f.err
}

func (f *fakeTicketService) GetTicketByID(_ context.Context, _ string, caller domain.Identity) (*domain.TicketDetail, error) {
	f.caller = caller
	return f.detail, f.err
}

func (f *fakeTicketService) CancelRegistration(_ context.Context, ticketID, userID string) error {
	f.caller.UserID = userID
	if f.err == nil {
		f.cancelled = ticketID
	}
	return f.err
}

type fakeValidationService struct {
	res      *domain.CheckInResult
	history  []*domain.ScanRecord
	err      error
	ticketID string
	eventID  string
	staffID  string
}

func (f *fakeValidationService) ValidateTicket(_ context.Context, ticketID, eventID, staffID string) (*domain.CheckInResult, error) {
	f.ticketID = ticketID
	f.eventID = eventID
	f.staffID = staffID
	return f.res, f.err
}

func (f *fakeValidationService) GetStaffScanHistory(_ context.Context, staffID string) ([]*domain.ScanRecord, error) {
	f.staffID = staffID
	return f.history, f.err
}

type fakeStatsService struct {
	dashboard *domain.DashboardStats
	event     *domain.EventStats
	err       error
}

func (f *fakeStatsService) InvalidateEvent(string) {}

func (f *fakeStatsService) GetDashboardStats(context.Context) (*domain.DashboardStats, error) {
	return f.dashboard, f.err
}

func (f *fakeStatsService) GetEventStats(context.Context, string) (*domain.EventStats, error) {
	return f.event, f.err
}

type fakeEventService struct {
	event       *domain.Event
	events      []*domain.Event
	detail      *domain.EventWithOrganizer
	regs        []*domain.RegistrationWithUser
	total       int
	err         error
	input       domain.EventInput
	organizerID string
	page        domain.PaginationParams
}

func (f *fakeEventService) CreateEvent(_ context.Context, organizerID string, in domain.EventInput) (*domain.Event, error) {
	f.organizerID, f.input = organizerID, in
	return f.event, f.err
}

func (f *fakeEventService) GetEvent(context.Context, string) (*domain.EventWithOrganizer, error) {
	return f.detail, f.err
}

func (f *fakeEventService) ListEvents(_ context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	f.page = p
	return f.events, f.total, f.err
}

func (f *fakeEventService) ListEventRegistrations(_ context.Context, _ string, p domain.PaginationParams) ([]*domain.RegistrationWithUser, int, error) {
	f.page = p
	return f.regs, f.total, f.err
}
