package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"embervite/internal/domain"
	"embervite/internal/token"
)

type eventService struct {
	eventRepo       domain.EventRepository
	memberRepo      domain.MemberRepository
	eventMemberRepo domain.EventMemberRepository
	invites         domain.InviteService
	calendar        domain.CalendarEncoder
	tokens          *token.Generator
	contextTimeout  time.Duration
	inviteTimeout   time.Duration
	now             func() time.Time
}

func NewEventService(
	eventRepo domain.EventRepository,
	memberRepo domain.MemberRepository,
	eventMemberRepo domain.EventMemberRepository,
	invites domain.InviteService,
	calendar domain.CalendarEncoder,
	tokens *token.Generator,
	timeout time.Duration,
	inviteTimeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:       eventRepo,
		memberRepo:      memberRepo,
		eventMemberRepo: eventMemberRepo,
		invites:         invites,
		calendar:        calendar,
		tokens:          tokens,
		contextTimeout:  timeout,
		inviteTimeout:   inviteTimeout,
		now:             time.Now,
	}
}

// ownedEvent loads an event and hides it unless ownerID owns it.
func (s *eventService) ownedEvent(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.ownedEvent(ctx, eventID, ownerID)
}

func (s *eventService) SaveEvent(ctx context.Context, eventID, ownerID string, in domain.EventInput) (*domain.Event, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	in.Normalize()
	if errs := in.Validate(); len(errs) > 0 {
		return nil, false, &domain.ValidationError{Messages: errs}
	}

	now := s.now().UTC()
	if eventID == domain.NewRecordID {
		event := &domain.Event{OwnerID: ownerID, Disabled: true, CreatedAt: now, UpdatedAt: now}
		in.Apply(event)
		if err := s.eventRepo.Create(ctx, event); err != nil {
			return nil, false, fmt.Errorf("create event: %w", err)
		}
		return event, true, nil
	}

	event, err := s.ownedEvent(ctx, eventID, ownerID)
	if err != nil {
		return nil, false, err
	}
	in.Apply(event)
	event.UpdatedAt = now
	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("update event: %w", err)
	}
	return event, false, nil
}

func (s *eventService) ToggleEvent(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.ownedEvent(ctx, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	updated, err := s.eventRepo.SetDisabled(ctx, event.ID, !event.Disabled)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("toggle event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.ownedEvent(ctx, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.eventRepo.Delete(ctx, event.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete event: %w", err)
	}
	return event, nil
}

func (s *eventService) SetEventMembers(ctx context.Context, eventID, ownerID string, memberIDs []string) ([]*domain.EventMemberDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.ownedEvent(ctx, eventID, ownerID)
	if err != nil {
		return nil, err
	}

	keep := make([]string, 0, len(memberIDs))
	seen := make(map[string]struct{}, len(memberIDs))
	var invalid []string
	for _, id := range memberIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		member, err := s.memberRepo.GetByID(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get member: %w", err)
		}
		if member == nil || member.OwnerID != ownerID {
			invalid = append(invalid, fmt.Sprintf("member %q not found", id))
			continue
		}
		keep = append(keep, member.ID)
	}
	if len(invalid) > 0 {
		return nil, &domain.ValidationError{Messages: invalid}
	}

	if err := s.eventMemberRepo.DeleteByEventExcept(ctx, event.ID, keep); err != nil {
		return nil, fmt.Errorf("remove event members: %w", err)
	}
	current, err := s.eventMemberRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list event members: %w", err)
	}
	existing := make(map[string]struct{}, len(current))
	for _, em := range current {
		existing[em.MemberID] = struct{}{}
	}

	now := s.now().UTC()
	added := false
	for _, memberID := range keep {
		if _, ok := existing[memberID]; ok {
			continue
		}
		em := &domain.EventMember{EventID: event.ID, MemberID: memberID, CreatedAt: now}
		_, err := s.tokens.InsertUnique(ctx, func(ctx context.Context, tok string) error {
			em.UniqueHash = tok
			return s.eventMemberRepo.Create(ctx, em)
		})
		if err != nil && !errors.Is(err, domain.ErrAlreadyInvited) {
			return nil, fmt.Errorf("add event member: %w", err)
		}
		added = true
	}
	if !added {
		return current, nil
	}

	list, err := s.eventMemberRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list event members: %w", err)
	}
	return list, nil
}

func (s *eventService) GetAttendance(ctx context.Context, eventID, ownerID string) (*domain.Attendance, error) {
	list, err := s.eventMembers(ctx, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	att := &domain.Attendance{
		Invited:      []*domain.EventMemberDetail{},
		Attending:    []*domain.EventMemberDetail{},
		NotAttending: []*domain.EventMemberDetail{},
	}
	for _, em := range list {
		switch {
		case em.Attending == nil:
			att.Invited = append(att.Invited, em)
		case *em.Attending:
			att.Attending = append(att.Attending, em)
		default:
			att.NotAttending = append(att.NotAttending, em)
		}
	}
	return att, nil
}

func (s *eventService) AttendanceMap(ctx context.Context, eventID, ownerID string) (map[string]*bool, error) {
	list, err := s.eventMembers(ctx, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*bool, len(list))
	for _, em := range list {
		out[em.MemberID] = em.Attending
	}
	return out, nil
}

func (s *eventService) eventMembers(ctx context.Context, eventID, ownerID string) ([]*domain.EventMemberDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.ownedEvent(ctx, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	list, err := s.eventMemberRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list event members: %w", err)
	}
	return list, nil
}

// SendInvites checks ownership under the request timeout, then sends the
// batch under inviteTimeout. The batch is detached from ctx cancellation so a
// dropped client cannot stop it halfway through the member list.
func (s *eventService) SendInvites(ctx context.Context, eventID, ownerID string) (*domain.InviteResult, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.ownedEvent(lookupCtx, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	if event.Disabled {
		return nil, domain.ErrEventDisabled
	}

	sendCtx, cancelSend := context.WithTimeout(context.WithoutCancel(ctx), s.inviteTimeout)
	defer cancelSend()
	return s.invites.SendEventInvites(sendCtx, event, false)
}

func (s *eventService) EventCalendar(ctx context.Context, eventID, ownerID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.ownedEvent(ctx, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	body, err := s.calendar.Encode(event, s.now())
	if err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return body, nil
}
