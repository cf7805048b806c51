package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"embervite/internal/delivery/http/helpers"
	"embervite/internal/delivery/http/middleware"
	"embervite/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testOwnerID = "owner-1"
	testEventID = "7f1c8a3e-2b4d-4e5f-9a6b-1c2d3e4f5a6b"
	testMemberA = "0b9e8d7c-6f5a-4b3c-8d2e-1f0a9b8c7d6e"
)

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err        error
	events     []*domain.Event
	event      *domain.Event
	created    bool
	members    []*domain.EventMemberDetail
	attendance *domain.Attendance
	attMap     map[string]*bool
	result     *domain.InviteResult
	ics        []byte

	lastEventID   string
	lastOwnerID   string
	lastInput     domain.EventInput
	lastMemberIDs []string
}

func (f *fakeEventService) record(eventID, ownerID string) {
	f.lastEventID, f.lastOwnerID = eventID, ownerID
}

func (f *fakeEventService) ListEvents(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	f.record("", ownerID)
	return f.events, f.err
}

func (f *fakeEventService) GetEvent(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	f.record(eventID, ownerID)
	return f.event, f.err
}

func (f *fakeEventService) SaveEvent(ctx context.Context, eventID, ownerID string, in domain.EventInput) (*domain.Event, bool, error) {
	f.record(eventID, ownerID)
	f.lastInput = in
	return f.event, f.created, f.err
}

func (f *fakeEventService) ToggleEvent(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	f.record(eventID, ownerID)
	return f.event, f.err
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	f.record(eventID, ownerID)
	return f.event, f.err
}

func (f *fakeEventService) SetEventMembers(ctx context.Context, eventID, ownerID string, memberIDs []string) ([]*domain.EventMemberDetail, error) {
	f.record(eventID, ownerID)
	f.lastMemberIDs = memberIDs
	return f.members, f.err
}

func (f *fakeEventService) GetAttendance(ctx context.Context, eventID, ownerID string) (*domain.Attendance, error) {
	f.record(eventID, ownerID)
	return f.attendance, f.err
}

func (f *fakeEventService) AttendanceMap(ctx context.Context, eventID, ownerID string) (map[string]*bool, error) {
	f.record(eventID, ownerID)
	return f.attMap, f.err
}

func (f *fakeEventService) SendInvites(ctx context.Context, eventID, ownerID string) (*domain.InviteResult, error) {
	f.record(eventID, ownerID)
	return f.result, f.err
}

func (f *fakeEventService) EventCalendar(ctx context.Context, eventID, ownerID string) ([]byte, error) {
	f.record(eventID, ownerID)
	return f.ics, f.err
}

// fakeMemberService implements domain.MemberService.
type fakeMemberService struct {
	err     error
	members []*domain.Member
	member  *domain.Member
	created bool
	backup  []byte

	lastMemberID string
	lastOwnerID  string
	lastInput    domain.MemberInput
}

func (f *fakeMemberService) ListMembers(ctx context.Context, ownerID string) ([]*domain.Member, error) {
	f.lastOwnerID = ownerID
	return f.members, f.err
}

func (f *fakeMemberService) GetMember(ctx context.Context, memberID, ownerID string) (*domain.Member, error) {
	f.lastMemberID, f.lastOwnerID = memberID, ownerID
	return f.member, f.err
}

func (f *fakeMemberService) SaveMember(ctx context.Context, memberID, ownerID string, in domain.MemberInput) (*domain.Member, bool, error) {
	f.lastMemberID, f.lastOwnerID = memberID, ownerID
	f.lastInput = in
	return f.member, f.created, f.err
}

func (f *fakeMemberService) DeleteMember(ctx context.Context, memberID, ownerID string) (*domain.Member, error) {
	f.lastMemberID, f.lastOwnerID = memberID, ownerID
	return f.member, f.err
}

func (f *fakeMemberService) ExportMembers(ctx context.Context, ownerID string) ([]byte, error) {
	f.lastOwnerID = ownerID
	return f.backup, f.err
}

// fakeUserService implements domain.UserService.
type fakeUserService struct {
	err       error
	user      *domain.User
	profile   *domain.UserProfile
	token     string
	lastInput domain.SignUpInput
	lastEmail string
	lastPass  string
}

func (f *fakeUserService) SignUp(ctx context.Context, in domain.SignUpInput) (*domain.User, *domain.UserProfile, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.user, f.profile, nil
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	f.lastEmail, f.lastPass = email, password
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeUserService) GetProfile(ctx context.Context, userID string) (*domain.User, *domain.UserProfile, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.user, f.profile, nil
}

// fakeRSVPService implements domain.RSVPService.
type fakeRSVPService struct {
	err           error
	detail        *domain.EventMemberDetail
	calls         int
	lastToken     string
	lastAttending bool
}

func (f *fakeRSVPService) Confirm(ctx context.Context, tok string, attending bool) (*domain.EventMemberDetail, error) {
	f.calls++
	f.lastToken, f.lastAttending = tok, attending
	return f.detail, f.err
}

// fakeDashboardService implements domain.DashboardService.
type fakeDashboardService struct {
	err       error
	dashboard *domain.Dashboard
}

func (f *fakeDashboardService) Dashboard(ctx context.Context, ownerID string) (*domain.Dashboard, error) {
	return f.dashboard, f.err
}

// serve routes a single request through a mux so path values are populated.
// An empty userID sends the request unauthenticated.
func serve(t *testing.T, pattern string, handler http.HandlerFunc, method, target string, body any, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rdr)
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope decodes the standard response envelope, leaving data raw.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (json.RawMessage, *helpers.APIError) {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Data, env.Error
}
