package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/domain"
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{Logger: logger, Service: svc}
}

// CreateEventRequest is the request body for POST /events. The schedule is
// given either as date (YYYY-MM-DD or RFC 3339) with optional start_time and
// end_time, or as starts_at with optional ends_at.
type CreateEventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	ImageURL    string `json:"image_url"`
	Capacity    int    `json:"capacity"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	StartsAt    string `json:"starts_at"`
	EndsAt      string `json:"ends_at"`

	input domain.EventInput
}

// Validate implements helpers.Validator. On success the normalized input is kept on the request.
func (req *CreateEventRequest) Validate() []string {
	schedule, err := domain.ParseScheduleInput(req.Date, req.StartTime, req.EndTime, req.StartsAt, req.EndsAt)
	if err != nil {
		return []string{validationMessage(err)}
	}
	in, err := domain.EventPayload{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
		Capacity:    req.Capacity,
		Schedule:    schedule,
	}.Normalize()
	if err != nil {
		return []string{validationMessage(err)}
	}
	req.input = in
	return nil
}

func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
}

// EventSuccessResponse is the success response envelope for POST /events.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an upcoming event organized by the caller. Accepts a split date and times, a timestamp date, or a starts_at/ends_at range.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateEventRequest true "Event"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), caller.UserID, req.input)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// EventListPayload is the data of GET /events.
type EventListPayload struct {
	Events     []*domain.Event        `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// EventListResponse is the success response envelope for GET /events.
type EventListResponse struct {
	Data  *EventListPayload `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEvents godoc
// @Summary List events
// @Description All events, earliest date first. Public so attendees can find events to register for.
// @Tags events
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.EventListResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	p := helpers.ParsePagination(r)
	events, total, err := c.Service.ListEvents(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventListPayload{
		Events:     events,
		Pagination: helpers.PageOf(p, total),
	})
}

// EventDetailResponse is the success response envelope for GET /events/{eventID}.
type EventDetailResponse struct {
	Data  *domain.EventWithOrganizer `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// GetEvent godoc
// @Summary Get an event with its organizer
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventDetailResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// EventRegistrationsPayload is the data of GET /events/{eventID}/registrations.
type EventRegistrationsPayload struct {
	Registrations []*domain.RegistrationWithUser `json:"registrations"`
	Pagination    helpers.PaginationMeta         `json:"pagination"`
}

// EventRegistrationsResponse is the success response envelope for GET /events/{eventID}/registrations.
type EventRegistrationsResponse struct {
	Data  *EventRegistrationsPayload `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// ListRegistrations godoc
// @Summary List an event's registrations
// @Description Paginated, oldest registration first.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.EventRegistrationsResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [get]
func (c *EventController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	p := helpers.ParsePagination(r)
	regs, total, err := c.Service.ListEventRegistrations(r.Context(), eventID, p)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventRegistrationsPayload{
		Registrations: regs,
		Pagination:    helpers.PageOf(p, total),
	})
}
