package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokenVerifier implements domain.TokenVerifier for tests.
type fakeTokenVerifier struct {
	id  domain.Identity
	err error
}

func (f *fakeTokenVerifier) Verify(_ string) (domain.Identity, error) {
	if f.err != nil {
		return domain.Identity{}, f.err
	}
	return f.id, nil
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	staff := domain.Identity{UserID: "user-123", Role: domain.RoleStaff}

	tests := []struct {
		name         string
		authHeader   string
		verifier     domain.TokenVerifier
		wantStatus   int
		wantBodyCode string
		nextCalled   bool
		wantIdentity domain.Identity
	}{
		{
			name:         "valid token sets context and calls next",
			authHeader:   "Bearer valid-token",
			verifier:     &fakeTokenVerifier{id: staff},
			wantStatus:   http.StatusOK,
			nextCalled:   true,
			wantIdentity: staff,
		},
		{
			name:         "missing authorization header",
			verifier:     &fakeTokenVerifier{id: staff},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "invalid authorization format no Bearer prefix",
			authHeader:   "Basic abc",
			verifier:     &fakeTokenVerifier{id: staff},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "empty token after Bearer",
			authHeader:   "Bearer ",
			verifier:     &fakeTokenVerifier{id: staff},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "verifier returns error",
			authHeader:   "Bearer bad-token",
			verifier:     &fakeTokenVerifier{err: errors.New("invalid or expired token")},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var captured domain.Identity
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				if id, ok := IdentityFromContext(r.Context()); ok {
					captured = id
				}
				w.WriteHeader(http.StatusOK)
			})
			handler := RequireAuth(tt.verifier, logger)(next)

			req := httptest.NewRequest(http.MethodGet, "http://test/registrations/my-tickets", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.nextCalled, nextCalled, "next handler called")
			if tt.nextCalled {
				assert.Equal(t, tt.wantIdentity, captured, "identity in context")
			}
			if tt.wantBodyCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		identity   *domain.Identity
		wantStatus int
	}{
		{"staff allowed", &domain.Identity{UserID: "s1", Role: domain.RoleStaff}, http.StatusOK},
		{"admin allowed", &domain.Identity{UserID: "a1", Role: domain.RoleAdmin}, http.StatusOK},
		{"attendee forbidden", &domain.Identity{UserID: "u1", Role: domain.RoleAttendee}, http.StatusForbidden},
		{"no identity", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireRole(domain.RoleStaff, domain.RoleAdmin)(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodPost, "/registrations/validate", nil)
			if tt.identity != nil {
				req = req.WithContext(SetIdentity(req.Context(), *tt.identity))
			}
			rr := httptest.NewRecorder()
			handler(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}
