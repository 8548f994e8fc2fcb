package controllers

import (
	"log/slog"
	"net/http"

	"eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/domain"
)

type RegistrationController struct {
	Logger        *slog.Logger
	Registrations domain.RegistrationService
	Tickets       domain.TicketService
}

func NewRegistrationController(logger *slog.Logger, registrations domain.RegistrationService, tickets domain.TicketService) *RegistrationController {
	return &RegistrationController{
		Logger:        logger,
		Registrations: registrations,
		Tickets:       tickets,
	}
}

// RegistrationSuccessResponse is the success response envelope for POST /events/{eventID}/register.
type RegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// RegisterForEvent godoc
// @Summary Register the current user for an event
// @Description Creates a ticket for the authenticated user. Fails when the user already holds a ticket or the event is at capacity.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already registered, event full)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/register [post]
func (c *RegistrationController) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	reg, err := c.Registrations.RegisterForEvent(r.Context(), eventID, caller.UserID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// MyTicketsSuccessResponse is the success response envelope for GET /registrations/my-tickets.
type MyTicketsSuccessResponse struct {
	Data  []*domain.TicketWithEvent `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// GetMyTickets godoc
// @Summary List the current user's tickets
// @Description Returns the caller's tickets, newest registration first, each with an event summary.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MyTicketsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/my-tickets [get]
func (c *RegistrationController) GetMyTickets(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	tickets, err := c.Tickets.GetMyTickets(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tickets)
}

// TicketSuccessResponse is the success response envelope for GET /registrations/{ticketID}.
type TicketSuccessResponse struct {
	Data  *domain.TicketDetail `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// GetTicket godoc
// @Summary Get a ticket
// @Description Returns a ticket with its event and owner. Only the owner or an admin may read it.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param ticketID path string true "Ticket ID (UUID)"
// @Success 200 {object} controllers.TicketSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{ticketID} [get]
func (c *RegistrationController) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := helpers.PathUUID(w, r, "ticketID")
	if !ok {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	ticket, err := c.Tickets.GetTicketByID(r.Context(), ticketID, caller)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ticket)
}

// CancelResult is returned after a ticket is cancelled.
type CancelResult struct {
	TicketID string                    `json:"ticket_id"`
	Status   domain.RegistrationStatus `json:"status"`
}

// CancelSuccessResponse is the success response envelope for DELETE /registrations/{ticketID}.
type CancelSuccessResponse struct {
	Data  *CancelResult     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CancelRegistration godoc
// @Summary Cancel a ticket
// @Description Deletes the caller's own ticket and frees its capacity slot. Checked-in tickets cannot be cancelled.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param ticketID path string true "Ticket ID (UUID)"
// @Success 200 {object} controllers.CancelSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (ticket already used)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{ticketID} [delete]
func (c *RegistrationController) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := helpers.PathUUID(w, r, "ticketID")
	if !ok {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	if err := c.Tickets.CancelRegistration(r.Context(), ticketID, caller.UserID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CancelResult{TicketID: ticketID, Status: domain.RegistrationStatusCancelled})
}
