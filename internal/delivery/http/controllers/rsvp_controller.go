package controllers

import (
	"log/slog"
	"net/http"

	"embervite/internal/delivery/http/helpers"
	"embervite/internal/domain"
	"embervite/internal/services"
)

// RSVPResponse is what the invitee sees after following a yes/no link.
type RSVPResponse struct {
	EventTitle string `json:"event_title"`
	MemberName string `json:"member_name"`
	Attending  bool   `json:"attending"`
}

// RSVPSuccessResponse is the success response envelope for GET /rsvp/{token}/yes|no (200).
type RSVPSuccessResponse struct {
	Data  RSVPResponse      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RSVPController handles the public confirmation links sent in invites.
type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

// NewRSVPController creates an RSVPController.
func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{Logger: logger, Service: svc}
}

// Yes godoc
// @Summary Confirm attendance
// @Tags rsvp
// @Produce json
// @Param token path string true "Invite token"
// @Success 200 {object} controllers.RSVPSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rsvp/{token}/yes [get]
func (c *RSVPController) Yes(w http.ResponseWriter, r *http.Request) {
	c.confirm(w, r, true)
}

// No godoc
// @Summary Decline attendance
// @Tags rsvp
// @Produce json
// @Param token path string true "Invite token"
// @Success 200 {object} controllers.RSVPSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rsvp/{token}/no [get]
func (c *RSVPController) No(w http.ResponseWriter, r *http.Request) {
	c.confirm(w, r, false)
}

func (c *RSVPController) confirm(w http.ResponseWriter, r *http.Request, attending bool) {
	tok := r.PathValue("token")
	if !services.ValidRSVPToken(tok) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "invitation not found")
		return
	}
	em, err := c.Service.Confirm(r.Context(), tok, attending)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "invitation not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RSVPResponse{
		EventTitle: em.EventTitle,
		MemberName: em.MemberName(),
		Attending:  attending,
	})
}
