package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"embervite/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemberService(members *fakeMemberRepo) *memberService {
	svc := NewMemberService(members, time.Second).(*memberService)
	svc.now = func() time.Time { return testCreated }
	return svc
}

func TestMemberService_SaveMember(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		memberID    string
		ownerID     string
		in          domain.MemberInput
		wantCreated bool
		wantErr     error
	}{
		{name: "create", memberID: "0", ownerID: "owner-1", in: domain.MemberInput{FirstName: "Grace", Email: "GRACE@example.com"}, wantCreated: true},
		{name: "update", memberID: "mem-1", ownerID: "owner-1", in: domain.MemberInput{FirstName: "Grace", Email: "grace@example.com"}},
		{name: "other owner", memberID: "mem-1", ownerID: "owner-2", in: domain.MemberInput{FirstName: "Grace", Email: "grace@example.com"}, wantErr: domain.ErrNotFound},
		{name: "invalid", memberID: "0", ownerID: "owner-1", in: domain.MemberInput{Email: "bad"}, wantErr: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeMemberRepo(&domain.Member{ID: "mem-1", OwnerID: "owner-1", FirstName: "Alan", Email: "alan@example.com"})
			svc := newTestMemberService(repo)

			member, created, err := svc.SaveMember(ctx, tt.memberID, tt.ownerID, tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "Alan", repo.byID["mem-1"].FirstName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)
			assert.Equal(t, "grace@example.com", member.Email)
			assert.Equal(t, "owner-1", member.OwnerID)
		})
	}
}

func TestMemberService_DeleteMember(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMemberRepo(&domain.Member{ID: "mem-1", OwnerID: "owner-1", FirstName: "Alan"})
	svc := newTestMemberService(repo)

	_, err := svc.DeleteMember(ctx, "mem-1", "owner-2")
	require.ErrorIs(t, err, domain.ErrNotFound)

	m, err := svc.DeleteMember(ctx, "mem-1", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "Alan", m.FirstName)
	assert.Empty(t, repo.byID)
}

func TestMemberService_other_owner_is_not_found(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(svc *memberService) error
	}{
		{name: "get", call: func(svc *memberService) error {
			_, err := svc.GetMember(ctx, "mem-1", "owner-2")
			return err
		}},
		{name: "save", call: func(svc *memberService) error {
			_, _, err := svc.SaveMember(ctx, "mem-1", "owner-2", domain.MemberInput{FirstName: "Eve", Email: "eve@example.com"})
			return err
		}},
		{name: "delete", call: func(svc *memberService) error {
			_, err := svc.DeleteMember(ctx, "mem-1", "owner-2")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeMemberRepo(&domain.Member{ID: "mem-1", OwnerID: "owner-1", FirstName: "Alan", Email: "alan@example.com"})

			require.ErrorIs(t, tt.call(newTestMemberService(repo)), domain.ErrNotFound)

			require.Contains(t, repo.byID, "mem-1")
			assert.Equal(t, "owner-1", repo.byID["mem-1"].OwnerID)
			assert.Equal(t, "Alan", repo.byID["mem-1"].FirstName)
			assert.Equal(t, "alan@example.com", repo.byID["mem-1"].Email)
		})
	}
}

func TestMemberService_ExportMembers(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMemberRepo(
		&domain.Member{ID: "mem-2", OwnerID: "owner-1", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
		&domain.Member{ID: "mem-1", OwnerID: "owner-1", FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"},
		&domain.Member{ID: "mem-x", OwnerID: "owner-2", FirstName: "Eve", Email: "eve@example.com"},
	)
	svc := newTestMemberService(repo)

	body, err := svc.ExportMembers(ctx, "owner-1")
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Alan", got[0]["first_name"])
	assert.Equal(t, "grace@example.com", got[1]["email"])
	assert.NotContains(t, got[0], "owner_id")

	body, err = svc.ExportMembers(ctx, "owner-3")
	require.NoError(t, err)
	assert.Nil(t, body)
}

func TestDashboardService_Dashboard(t *testing.T) {
	f := newEventFixture(testEvent("ev-1", "owner-1", false), testEvent("ev-2", "owner-2", false))
	svc := NewDashboardService(f.svc, newTestMemberService(f.members))

	d, err := svc.Dashboard(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, d.Events, 1)
	assert.Equal(t, "ev-1", d.Events[0].ID)
	assert.Len(t, d.Members, 2)
}
