package controllers

import (
	"log/slog"
	"net/http"

	"eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/domain"
)

type StatsController struct {
	Logger  *slog.Logger
	Service domain.StatsService
}

func NewStatsController(logger *slog.Logger, svc domain.StatsService) *StatsController {
	return &StatsController{Logger: logger, Service: svc}
}

// DashboardStatsResponse is the success response envelope for GET /admin/stats.
type DashboardStatsResponse struct {
	Data  *domain.DashboardStats `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// GetDashboardStats godoc
// @Summary Platform-wide statistics
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.DashboardStatsResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/stats [get]
func (c *StatsController) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Service.GetDashboardStats(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}

// EventStatsResponse is the success response envelope for GET /events/{eventID}/stats.
type EventStatsResponse struct {
	Data  *domain.EventStats `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// GetEventStats godoc
// @Summary Statistics for one event
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventStatsResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/stats [get]
func (c *StatsController) GetEventStats(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	stats, err := c.Service.GetEventStats(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}
