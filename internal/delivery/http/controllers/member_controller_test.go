package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embervite/internal/delivery/http/helpers"
	"embervite/internal/domain"
)

func newMemberController(members *fakeMemberService) *MemberController {
	users := &fakeUserService{user: &domain.User{ID: testOwnerID, Username: "alice"}}
	return NewMemberController(testLogger, members, users)
}

func TestMemberController_ListMembers(t *testing.T) {
	svc := &fakeMemberService{members: []*domain.Member{{ID: "m1", FirstName: "Ann"}}}
	c := newMemberController(svc)

	rec := serve(t, "GET /members", c.ListMembers, http.MethodGet, "/members", nil, testOwnerID)

	require.Equal(t, http.StatusOK, rec.Code)
	data, _ := decodeEnvelope(t, rec)
	var page helpers.Page[*domain.Member]
	require.NoError(t, json.Unmarshal(data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Ann", page.Items[0].FirstName)
	assert.Equal(t, helpers.DefaultPageSize, page.Pagination.PageSize)
}

func TestMemberController_SaveMember(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		body       any
		created    bool
		svcErr     error
		wantStatus int
	}{
		{"create", "/members/0", map[string]any{"first_name": "Ann", "email": " ANN@Example.com "}, true, nil, http.StatusCreated},
		{"update", "/members/" + testMemberA, map[string]any{"first_name": "Ann", "email": "ann@example.com"}, false, nil, http.StatusOK},
		{"cross owner", "/members/" + testMemberA, map[string]any{"first_name": "Ann", "email": "ann@example.com"}, false, domain.ErrNotFound, http.StatusNotFound},
		{"missing email", "/members/0", map[string]any{"first_name": "Ann"}, false, nil, http.StatusBadRequest},
		{"unknown field", "/members/0", map[string]any{"first_name": "Ann", "email": "ann@example.com", "id": "x"}, false, nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeMemberService{member: &domain.Member{ID: testMemberA}, created: tt.created, err: tt.svcErr}
			c := newMemberController(svc)

			rec := serve(t, "POST /members/{memberID}", c.SaveMember, http.MethodPost, tt.target, tt.body, testOwnerID)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, "ann@example.com", svc.lastInput.Email)
				assert.Equal(t, domain.NewRecordID, svc.lastMemberID)
			}
			if tt.wantStatus == http.StatusBadRequest {
				assert.Empty(t, svc.lastOwnerID, "service must not be called")
			}
		})
	}
}

func TestMemberController_DeleteMember(t *testing.T) {
	svc := &fakeMemberService{member: &domain.Member{ID: testMemberA, FirstName: "Ann", LastName: "Lee"}}
	c := newMemberController(svc)

	rec := serve(t, "DELETE /members/{memberID}", c.DeleteMember, http.MethodDelete, "/members/"+testMemberA, nil, testOwnerID)

	require.Equal(t, http.StatusOK, rec.Code)
	data, _ := decodeEnvelope(t, rec)
	var msg helpers.MessageResponse
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "Member Ann Lee Deleted!", msg.Message)
	assert.Equal(t, testMemberA, svc.lastMemberID)
}

func TestMemberController_BackupMembers(t *testing.T) {
	t.Run("attachment", func(t *testing.T) {
		body := []byte(`[{"first_name":"Ann"}]`)
		c := newMemberController(&fakeMemberService{backup: body})

		rec := serve(t, "GET /members/backup", c.BackupMembers, http.MethodGet, "/members/backup", nil, testOwnerID)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="embervite-backups-alice.json"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, string(body), rec.Body.String())
	})
	t.Run("no members", func(t *testing.T) {
		c := newMemberController(&fakeMemberService{})

		rec := serve(t, "GET /members/backup", c.BackupMembers, http.MethodGet, "/members/backup", nil, testOwnerID)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
	})
	t.Run("export fails", func(t *testing.T) {
		c := newMemberController(&fakeMemberService{err: errors.New("boom")})

		rec := serve(t, "GET /members/backup", c.BackupMembers, http.MethodGet, "/members/backup", nil, testOwnerID)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
