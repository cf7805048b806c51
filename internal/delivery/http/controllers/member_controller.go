package controllers

import (
	"log/slog"
	"net/http"

	"embervite/internal/delivery/http/helpers"
	"embervite/internal/domain"
)

// MemberRequest is the request body for POST /members/{memberID}.
type MemberRequest struct {
	domain.MemberInput
}

// MemberListSuccessResponse is the success response envelope for GET /members (200).
type MemberListSuccessResponse struct {
	Data  helpers.Page[*domain.Member] `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

// MemberSuccessResponse is the success response envelope for GET /members/{memberID} (200).
type MemberSuccessResponse struct {
	Data  *domain.Member    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// MemberMessageSuccessResponse is the success envelope for member writes.
type MemberMessageSuccessResponse struct {
	Data  helpers.MessageResponse `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// MemberController handles the organizer's address book.
type MemberController struct {
	Logger  *slog.Logger
	Service domain.MemberService
	Users   domain.UserService
}

// NewMemberController creates a MemberController. users is needed for the backup filename.
func NewMemberController(logger *slog.Logger, svc domain.MemberService, users domain.UserService) *MemberController {
	return &MemberController{Logger: logger, Service: svc, Users: users}
}

// ListMembers godoc
// @Summary List my members
// @Description Members ordered by first name. Optional page and page_size query params.
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 50, max 200)"
// @Success 200 {object} controllers.MemberListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /members [get]
func (c *MemberController) ListMembers(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	members, err := c.Service.ListMembers(r.Context(), ownerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "member not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.Paginate(members, helpers.ParsePagination(r)))
}

// GetMember godoc
// @Summary Get a member
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param memberID path string true "Member ID (UUID)"
// @Success 200 {object} controllers.MemberSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /members/{memberID} [get]
func (c *MemberController) GetMember(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	memberID, ok := helpers.PathRecordID(w, r, "memberID", false)
	if !ok {
		return
	}
	member, err := c.Service.GetMember(r.Context(), memberID, ownerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "member not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, member)
}

// SaveMember godoc
// @Summary Create or update a member
// @Description memberID "0" creates a new member.
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param memberID path string true "Member ID (UUID) or 0"
// @Param body body MemberRequest true "Member fields"
// @Success 200 {object} controllers.MemberMessageSuccessResponse "updated"
// @Success 201 {object} controllers.MemberMessageSuccessResponse "created"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /members/{memberID} [post]
func (c *MemberController) SaveMember(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	memberID, ok := helpers.PathRecordID(w, r, "memberID", true)
	if !ok {
		return
	}
	var req MemberRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	member, created, err := c.Service.SaveMember(r.Context(), memberID, ownerID, req.MemberInput)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "member not found")
		return
	}
	if created {
		helpers.WriteJSONSuccess(w, http.StatusCreated, helpers.MessageResponse{Message: "New Member Created!", Record: member})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.MessageResponse{Message: "Member Updated!", Record: member})
}

// DeleteMember godoc
// @Summary Delete a member
// @Description Also removes the member from every event invite list.
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param memberID path string true "Member ID (UUID)"
// @Success 200 {object} controllers.MemberMessageSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /members/{memberID} [delete]
func (c *MemberController) DeleteMember(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	memberID, ok := helpers.PathRecordID(w, r, "memberID", false)
	if !ok {
		return
	}
	member, err := c.Service.DeleteMember(r.Context(), memberID, ownerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "member not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.MessageResponse{Message: "Member " + member.FullName() + " Deleted!"})
}

// BackupMembers godoc
// @Summary Download a backup of my members
// @Description JSON array attachment. Empty body when there are no members.
// @Tags members
// @Produce json
// @Security BearerAuth
// @Success 200 {string} string "JSON array of members"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /members/backup [get]
func (c *MemberController) BackupMembers(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	user, _, err := c.Users.GetProfile(r.Context(), ownerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "user not found")
		return
	}
	body, err := c.Service.ExportMembers(r.Context(), ownerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "member not found")
		return
	}
	if body == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	helpers.WriteAttachment(w, "text/json", "embervite-backups-"+user.Username+".json", body)
}
