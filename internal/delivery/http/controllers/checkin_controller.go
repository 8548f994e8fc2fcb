package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/domain"
)

type CheckInController struct {
	Logger  *slog.Logger
	Service domain.ValidationService
}

func NewCheckInController(logger *slog.Logger, svc domain.ValidationService) *CheckInController {
	return &CheckInController{
		Logger:  logger,
		Service: svc,
	}
}

// ValidateTicketRequest is the request body for POST /registrations/validate.
type ValidateTicketRequest struct {
	TicketID string `json:"ticket_id"`
	EventID  string `json:"event_id"`
}

// Validate implements helpers.Validator.
func (v *ValidateTicketRequest) Validate() []string {
	v.TicketID = strings.TrimSpace(v.TicketID)
	v.EventID = strings.TrimSpace(v.EventID)
	var errs []string
	if msg := canonicalizeID("ticket_id", &v.TicketID); msg != "" {
		errs = append(errs, msg)
	}
	if msg := canonicalizeID("event_id", &v.EventID); msg != "" {
		errs = append(errs, msg)
	}
	return errs
}

// canonicalizeID rewrites *id to its lowercase UUID form. Scanners in QR
// alphanumeric mode send upper case.
func canonicalizeID(field string, id *string) string {
	if *id == "" {
		return field + " is required"
	}
	c, ok := helpers.CanonicalUUID(*id)
	if !ok {
		return field + " must be a UUID"
	}
	*id = c
	return ""
}

// CheckInSuccessResponse is the response envelope for POST /registrations/validate.
// On 409 "ticket already used" Data still holds the original check-in.
type CheckInSuccessResponse struct {
	Data  *domain.CheckInResult `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ValidateTicket godoc
// @Summary Check a ticket in at the door
// @Description Moves a registered ticket to checked-in. A ticket scanned for the wrong event, already used, or cancelled is rejected. For an already used ticket the response data carries the original check-in time and attendee.
// @Tags check-in
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.ValidateTicketRequest true "Ticket and gate event"
// @Success 200 {object} controllers.CheckInSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (invalid ticket)"
// @Failure 409 {object} controllers.CheckInSuccessResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/validate [post]
func (c *CheckInController) ValidateTicket(w http.ResponseWriter, r *http.Request) {
	var req ValidateTicketRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	res, err := c.Service.ValidateTicket(r.Context(), req.TicketID, req.EventID, caller.UserID)
	if errors.Is(err, domain.ErrTicketAlreadyUsed) && res != nil {
		helpers.WriteJSONErrorWithData(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error(), res)
		return
	}
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}

// ScanHistorySuccessResponse is the success response envelope for GET /registrations/staff/history.
type ScanHistorySuccessResponse struct {
	Data  []*domain.ScanRecord `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// GetScanHistory godoc
// @Summary List the caller's check-ins
// @Description Returns the tickets the caller has checked in, most recent first.
// @Tags check-in
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ScanHistorySuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/staff/history [get]
func (c *CheckInController) GetScanHistory(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	records, err := c.Service.GetStaffScanHistory(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, records)
}
