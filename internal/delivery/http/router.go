package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventcheckin/internal/delivery/http/controllers"
	"eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/delivery/http/middleware"
	"eventcheckin/internal/domain"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Controllers groups the handlers served by the router.
type Controllers struct {
	Registrations *controllers.RegistrationController
	CheckIn       *controllers.CheckInController
	Stats         *controllers.StatsController
	Events        *controllers.EventController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, db Pinger, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier, logger)
	staff := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireRole(domain.RoleStaff, domain.RoleAdmin)(next))
	}
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireRole(domain.RoleAdmin)(next))
	}

	// Events
	mux.HandleFunc("POST /events", admin(c.Events.CreateEvent))
	mux.HandleFunc("GET /events", c.Events.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", c.Events.GetEvent)
	mux.HandleFunc("GET /events/{eventID}/registrations", admin(c.Events.ListRegistrations))
	mux.HandleFunc("GET /events/{eventID}/stats", admin(c.Stats.GetEventStats))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/register", auth(c.Registrations.RegisterForEvent))
	mux.HandleFunc("GET /registrations/my-tickets", auth(c.Registrations.GetMyTickets))
	mux.HandleFunc("GET /registrations/staff/history", auth(c.CheckIn.GetScanHistory))
	mux.HandleFunc("GET /registrations/{ticketID}", auth(c.Registrations.GetTicket))
	mux.HandleFunc("DELETE /registrations/{ticketID}", auth(c.Registrations.CancelRegistration))
	mux.HandleFunc("POST /registrations/validate", staff(c.CheckIn.ValidateTicket))

	// Admin
	mux.HandleFunc("GET /admin/stats", admin(c.Stats.GetDashboardStats))

	mux.HandleFunc("GET /health", health(db))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// health godoc
// @Summary Liveness and database reachability
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /health [get]
func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			helpers.WriteJSONError(w, http.StatusServiceUnavailable, "unavailable", "database unreachable")
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
