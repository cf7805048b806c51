package controllers

import (
	"log/slog"
	"net/http"

	"embervite/internal/delivery/http/helpers"
	"embervite/internal/domain"
)

// EventRequest is the request body for POST /events/{eventID}. Every editable field is listed; others are rejected.
type EventRequest struct {
	domain.EventInput
}

// EventMembersRequest is the request body for PUT /events/{eventID}/members.
type EventMembersRequest struct {
	MemberIDs []string `json:"member_ids"`
}

// Validate implements Validator.
func (e EventMembersRequest) Validate() []string {
	var errs []string
	if e.MemberIDs == nil {
		errs = append(errs, "member_ids is required")
	}
	for _, id := range e.MemberIDs {
		if !helpers.ValidRecordID(id, false) {
			errs = append(errs, "member_ids: "+id+" is not a valid id")
		}
	}
	return errs
}

// EventListSuccessResponse is the success response envelope for GET /events (200).
type EventListSuccessResponse struct {
	Data  helpers.Page[*domain.Event] `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// EventSuccessResponse is the success response envelope for single-event endpoints (200).
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventMessageSuccessResponse is the success envelope for event writes that carry a notice.
type EventMessageSuccessResponse struct {
	Data  helpers.MessageResponse `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// EventMembersSuccessResponse is the success response envelope for PUT /events/{eventID}/members (200).
type EventMembersSuccessResponse struct {
	Data  []*domain.EventMemberDetail `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// AttendanceSuccessResponse is the success response envelope for GET /events/{eventID}/attendance (200).
type AttendanceSuccessResponse struct {
	Data  *domain.Attendance `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// InviteResultSuccessResponse is the success response envelope for POST /events/{eventID}/invites (200).
type InviteResultSuccessResponse struct {
	Data  *domain.InviteResult `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// EventController handles organizer event endpoints.
type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

// NewEventController creates an EventController with the given logger and service.
func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{Logger: logger, Service: svc}
}

// ListEvents godoc
// @Summary List my events
// @Description Returns the organizer's events, oldest first. Optional page and page_size query params.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 50, max 200)"
// @Success 200 {object} controllers.EventListSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListEvents(r.Context(), ownerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.Paginate(events, helpers.ParsePagination(r)))
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathRecordID(w, r, "eventID", false)
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID, ownerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// SaveEvent godoc
// @Summary Create or update an event
// @Description eventID "0" creates a new event, which always starts disabled. Any other id updates that event in place.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID) or 0"
// @Param body body EventRequest true "Event fields"
// @Success 200 {object} controllers.EventMessageSuccessResponse "updated"
// @Success 201 {object} controllers.EventMessageSuccessResponse "created"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [post]
func (c *EventController) SaveEvent(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathRecordID(w, r, "eventID", true)
	if !ok {
		return
	}
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, created, err := c.Service.SaveEvent(r.Context(), eventID, ownerID, req.EventInput)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "event not found")
		return
	}
	if created {
		helpers.WriteJSONSuccess(w, http.StatusCreated, helpers.MessageResponse{
			Message: "New Event Created! You must enable it before invites can be sent.",
			Record:  event,
		})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.MessageResponse{Message: "Event Updated!", Record: event})
}

// ToggleEvent godoc
// @Summary Enable or disable an event
// @Description Flips the event's disabled flag. Invites are only sent for enabled events.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventMessageSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/toggle [post]
func (c *EventController) ToggleEvent(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathRecordID(w, r, "eventID", false)
	if !ok {
		return
	}
	event, err := c.Service.ToggleEvent(r.Context(), eventID, ownerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "event not found")
		return
	}
	msg := "Event Enabled!"
	if event.Disabled {
		msg = "Event Disabled!"
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.MessageResponse{Message: msg, Record: event})
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event and its invite list.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventMessageSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathRecordID(w, r, "eventID", false)
	if !ok {
		return
	}
	event, err := c.Service.DeleteEvent(r.Context(), eventID, ownerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.MessageResponse{Message: "Event " + event.Title + " Deleted!"})
}

// SetEventMembers godoc
// @Summary Replace an event's invite list
// @Description Members not listed are removed. Newly listed members get their own RSVP token.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body EventMembersRequest true "Member ids"
// @Success 200 {object} controllers.EventMembersSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/members [put]
func (c *EventController) SetEventMembers(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathRecordID(w, r, "eventID", false)
	if !ok {
		return
	}
	var req EventMembersRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	list, err := c.Service.SetEventMembers(r.Context(), eventID, ownerID, req.MemberIDs)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "event not found")
		return
	}
	if list == nil {
		list = []*domain.EventMemberDetail{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}

// GetAttendance godoc
// @Summary Event attendance
// @Description Invitees grouped as invited (no answer), attending, and not attending.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.AttendanceSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendance [get]
func (c *EventController) GetAttendance(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathRecordID(w, r, "eventID", false)
	if !ok {
		return
	}
	att, err := c.Service.GetAttendance(r.Context(), eventID, ownerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, att)
}

// SendInvites godoc
// @Summary Send invites now
// @Description Emails every invitee their yes/no links. Disabled events are refused with 409.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.InviteResultSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event disabled)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invites [post]
func (c *EventController) SendInvites(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathRecordID(w, r, "eventID", false)
	if !ok {
		return
	}
	result, err := c.Service.SendInvites(r.Context(), eventID, ownerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// EventCalendar godoc
// @Summary Download the event as iCalendar
// @Description A recurring VEVENT starting at the next occurrence.
// @Tags events
// @Produce text/calendar
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {string} string "iCalendar document"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/calendar.ics [get]
func (c *EventController) EventCalendar(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathRecordID(w, r, "eventID", false)
	if !ok {
		return
	}
	body, err := c.Service.EventCalendar(r.Context(), eventID, ownerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "event not found")
		return
	}
	helpers.WriteAttachment(w, "text/calendar; charset=utf-8", "event-"+eventID+".ics", body)
}
