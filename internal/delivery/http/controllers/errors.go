package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/delivery/http/middleware"
	"eventcheckin/internal/domain"
)

// writeServiceError maps a service error onto the response envelope. Errors
// outside the domain taxonomy are logged and reported generically.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case domain.IsNotFound(err):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFoundMessage(err))
	case domain.IsConflict(err):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		return domain.ErrEventNotFound.Error()
	case errors.Is(err, domain.ErrTicketNotFound):
		return domain.ErrTicketNotFound.Error()
	case errors.Is(err, domain.ErrInvalidTicket):
		return domain.ErrInvalidTicket.Error()
	}
	return "not found"
}

// callerIdentity returns the authenticated identity or writes a 401.
func callerIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	}
	return id, ok
}
