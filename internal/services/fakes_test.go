package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"embervite/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	byEmail   map[string]*domain.User
	createErr error
	getErr    error
	profiles  *fakeProfileRepo
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}, profiles: newFakeProfileRepo()}
}

func (f *fakeUserRepo) add(u *domain.User) {
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
}

// CreateWithProfile stores the user only once a profile hash has been
// accepted by profiles, mirroring the transactional repository.
func (f *fakeUserRepo) CreateWithProfile(ctx context.Context, u *domain.User, p *domain.UserProfile, assign domain.HashAssigner) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	id := fmt.Sprintf("user-%d", len(f.byID)+1)
	p.UserID = id
	err := assign(ctx, func(ctx context.Context, hash string) error {
		p.UniqueHash = hash
		return f.profiles.insert(p)
	})
	if err != nil {
		return err
	}
	u.ID = id
	f.add(u)
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

// fakeProfileRepo implements domain.UserProfileRepository; hashes in taken collide.
type fakeProfileRepo struct {
	byUser map[string]*domain.UserProfile
	taken  map[string]bool
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byUser: map[string]*domain.UserProfile{}, taken: map[string]bool{}}
}

func (f *fakeProfileRepo) insert(p *domain.UserProfile) error {
	if f.taken[p.UniqueHash] {
		return domain.ErrDuplicateToken
	}
	f.taken[p.UniqueHash] = true
	p.ID = "profile-" + p.UserID
	f.byUser[p.UserID] = p
	return nil
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if p, ok := f.byUser[userID]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct{}

func (fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }
func (fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + salt + "-" + password, nil
}
func (fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+salt+"-"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID, nil
}

// fakeEmailService records every message; failFor makes sends to that address fail.
type fakeEmailService struct {
	mu       sync.Mutex
	welcomes []*domain.WelcomeMessageEmailData
	invites  []*domain.EventInviteEmailData
	failFor  map[string]bool
	err      error
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.welcomes = append(f.welcomes, data)
	return nil
}

func (f *fakeEmailService) SendEventInvite(ctx context.Context, data *domain.EventInviteEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[data.Email] {
		return errors.New("mailbox unavailable")
	}
	f.invites = append(f.invites, data)
	return nil
}

// fakeEventRepo implements domain.EventRepository for tests.
type fakeEventRepo struct {
	byID    map[string]*domain.Event
	sentAt  map[string]time.Time
	listErr error
	nextID  int
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{byID: map[string]*domain.Event{}, sentAt: map[string]time.Time{}}
	for _, e := range events {
		f.byID[e.ID] = e
	}
	return f
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.nextID++
	e.ID = fmt.Sprintf("ev-new-%d", f.nextID)
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Event
	for _, e := range f.sorted() {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListEnabled(ctx context.Context) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Event
	for _, e := range f.sorted() {
		if !e.Disabled {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) sorted() []*domain.Event {
	out := make([]*domain.Event, 0, len(f.byID))
	for _, e := range f.byID {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) SetDisabled(ctx context.Context, id string, disabled bool) (*domain.Event, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.Disabled = disabled
	if !disabled {
		at := time.Now().UTC()
		e.EnabledAt = &at
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) MarkInvitesSent(ctx context.Context, id string, at time.Time) error {
	e, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.InvitesSentAt = &at
	f.sentAt[id] = at
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeMemberRepo implements domain.MemberRepository for tests.
type fakeMemberRepo struct {
	byID   map[string]*domain.Member
	nextID int
}

func newFakeMemberRepo(members ...*domain.Member) *fakeMemberRepo {
	f := &fakeMemberRepo{byID: map[string]*domain.Member{}}
	for _, m := range members {
		f.byID[m.ID] = m
	}
	return f
}

func (f *fakeMemberRepo) Create(ctx context.Context, m *domain.Member) error {
	f.nextID++
	m.ID = fmt.Sprintf("mem-new-%d", f.nextID)
	cp := *m
	f.byID[m.ID] = &cp
	return nil
}

func (f *fakeMemberRepo) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	if m, ok := f.byID[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMemberRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Member, error) {
	var out []*domain.Member
	for _, m := range f.byID {
		if m.OwnerID == ownerID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FirstName < out[j].FirstName })
	return out, nil
}

func (f *fakeMemberRepo) Update(ctx context.Context, m *domain.Member) error {
	if _, ok := f.byID[m.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *m
	f.byID[m.ID] = &cp
	return nil
}

func (f *fakeMemberRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeEventMemberRepo implements domain.EventMemberRepository over in-memory rows.
// members supplies the joined member columns.
type fakeEventMemberRepo struct {
	rows        []*domain.EventMemberDetail
	members     *fakeMemberRepo
	events      *fakeEventRepo
	takenHashes map[string]bool
	invited     map[string]time.Time
	resets      int
	nextID      int
}

func newFakeEventMemberRepo(events *fakeEventRepo, members *fakeMemberRepo) *fakeEventMemberRepo {
	return &fakeEventMemberRepo{members: members, events: events, takenHashes: map[string]bool{}, invited: map[string]time.Time{}}
}

func (f *fakeEventMemberRepo) Create(ctx context.Context, em *domain.EventMember) error {
	if f.takenHashes[em.UniqueHash] {
		return domain.ErrDuplicateToken
	}
	for _, r := range f.rows {
		if r.UniqueHash == em.UniqueHash {
			return domain.ErrDuplicateToken
		}
		if r.EventID == em.EventID && r.MemberID == em.MemberID {
			return domain.ErrAlreadyInvited
		}
	}
	f.nextID++
	em.ID = fmt.Sprintf("em-%d", f.nextID)
	d := &domain.EventMemberDetail{EventMember: *em}
	if m, ok := f.members.byID[em.MemberID]; ok {
		d.MemberFirstName, d.MemberLastName, d.MemberEmail = m.FirstName, m.LastName, m.Email
	}
	if e, ok := f.events.byID[em.EventID]; ok {
		d.EventTitle = e.Title
	}
	f.rows = append(f.rows, d)
	return nil
}

func (f *fakeEventMemberRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventMemberDetail, error) {
	var out []*domain.EventMemberDetail
	for _, r := range f.rows {
		if r.EventID == eventID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeEventMemberRepo) GetByUniqueHash(ctx context.Context, hash string) (*domain.EventMemberDetail, error) {
	for _, r := range f.rows {
		if r.UniqueHash == hash {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventMemberRepo) SetAttendingByHash(ctx context.Context, hash string, attending bool, at time.Time) (*domain.EventMemberDetail, error) {
	for _, r := range f.rows {
		if r.UniqueHash == hash {
			v := attending
			r.Attending = &v
			r.RespondedAt = &at
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventMemberRepo) DeleteByEventExcept(ctx context.Context, eventID string, keep []string) error {
	keepSet := map[string]bool{}
	for _, id := range keep {
		keepSet[id] = true
	}
	var out []*domain.EventMemberDetail
	for _, r := range f.rows {
		if r.EventID == eventID && !keepSet[r.MemberID] {
			continue
		}
		out = append(out, r)
	}
	f.rows = out
	return nil
}

func (f *fakeEventMemberRepo) MarkInvited(ctx context.Context, id string, at time.Time) error {
	f.invited[id] = at
	return nil
}

func (f *fakeEventMemberRepo) ResetAttendance(ctx context.Context, eventID string) error {
	f.resets++
	for _, r := range f.rows {
		if r.EventID == eventID {
			r.Attending = nil
			r.RespondedAt = nil
		}
	}
	return nil
}

// fakeInviteService records the events it was asked to send.
type fakeInviteService struct {
	calls  []string
	resets []bool
	err    error
	delay  time.Duration // simulated mailer latency for the whole batch
}

func (f *fakeInviteService) SendEventInvites(ctx context.Context, event *domain.Event, reset bool) (*domain.InviteResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.calls = append(f.calls, event.ID)
	f.resets = append(f.resets, reset)
	return &domain.InviteResult{Sent: 1, Failed: []string{}}, nil
}

// fakeCalendar implements domain.CalendarEncoder.
type fakeCalendar struct{}

func (fakeCalendar) Encode(e *domain.Event, now time.Time) ([]byte, error) {
	return []byte("BEGIN:VCALENDAR\r\nSUMMARY:" + e.Title + "\r\nEND:VCALENDAR\r\n"), nil
}

func boolPtr(v bool) *bool { return &v }
