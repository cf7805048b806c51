package controllers

import (
	"log/slog"
	"net/http"

	"embervite/internal/delivery/http/helpers"
	"embervite/internal/domain"
)

// DataRequest is the body accepted by the /data feeds.
type DataRequest struct {
	PK string `json:"pk"`
}

// Validate implements Validator.
func (d DataRequest) Validate() []string {
	if d.PK == "" {
		return []string{"pk is required"}
	}
	return nil
}

// AttendanceMapSuccessResponse is the success envelope for POST /data/event-members (200).
type AttendanceMapSuccessResponse struct {
	Data  map[string]*bool  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DataController serves the small JSON feeds the dashboard polls.
type DataController struct {
	Logger *slog.Logger
	Events domain.EventService
}

// NewDataController creates a DataController.
func NewDataController(logger *slog.Logger, events domain.EventService) *DataController {
	return &DataController{Logger: logger, Events: events}
}

// Event godoc
// @Summary Event detail feed
// @Tags data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DataRequest true "Event primary key"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /data/event [post]
func (c *DataController) Event(w http.ResponseWriter, r *http.Request) {
	ownerID, pk, ok := c.decode(w, r)
	if !ok {
		return
	}
	event, err := c.Events.GetEvent(r.Context(), pk, ownerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// EventMembers godoc
// @Summary Attendance by member
// @Description Maps member id to attending: null (no answer), true or false.
// @Tags data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DataRequest true "Event primary key"
// @Success 200 {object} controllers.AttendanceMapSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /data/event-members [post]
func (c *DataController) EventMembers(w http.ResponseWriter, r *http.Request) {
	ownerID, pk, ok := c.decode(w, r)
	if !ok {
		return
	}
	att, err := c.Events.AttendanceMap(r.Context(), pk, ownerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, att)
}

func (c *DataController) decode(w http.ResponseWriter, r *http.Request) (ownerID, pk string, ok bool) {
	ownerID, ok = requireUser(w, r)
	if !ok {
		return "", "", false
	}
	var req DataRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return "", "", false
	}
	if !helpers.ValidRecordID(req.PK, false) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		return "", "", false
	}
	return ownerID, req.PK, true
}
