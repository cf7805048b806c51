package controllers

import (
	"log/slog"
	"net/http"

	"embervite/internal/delivery/http/helpers"
	"embervite/internal/domain"
)

// DashboardSuccessResponse is the success response envelope for GET /dashboard (200).
type DashboardSuccessResponse struct {
	Data  *domain.Dashboard `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DashboardController serves the organizer landing page data.
type DashboardController struct {
	Logger  *slog.Logger
	Service domain.DashboardService
}

// NewDashboardController creates a DashboardController.
func NewDashboardController(logger *slog.Logger, svc domain.DashboardService) *DashboardController {
	return &DashboardController{Logger: logger, Service: svc}
}

// Dashboard godoc
// @Summary Dashboard
// @Description The organizer's events and members.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.DashboardSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /dashboard [get]
func (c *DashboardController) Dashboard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	d, err := c.Service.Dashboard(r.Context(), ownerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, d)
}
