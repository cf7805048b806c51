package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"embervite/internal/domain"
	"embervite/internal/schedule"
)

const occurrenceLayout = "Monday, January 2, 2006 at 15:04 MST"

type inviteService struct {
	eventRepo       domain.EventRepository
	eventMemberRepo domain.EventMemberRepository
	userRepo        domain.UserRepository
	emailService    domain.EmailService
	baseURL         string
	logger          *slog.Logger
	now             func() time.Time
}

// NewInviteService returns an InviteService that links invitees back to baseURL.
func NewInviteService(
	eventRepo domain.EventRepository,
	eventMemberRepo domain.EventMemberRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	baseURL string,
	logger *slog.Logger,
) domain.InviteService {
	return &inviteService{
		eventRepo:       eventRepo,
		eventMemberRepo: eventMemberRepo,
		userRepo:        userRepo,
		emailService:    emailService,
		baseURL:         strings.TrimRight(baseURL, "/"),
		logger:          logger,
		now:             time.Now,
	}
}

// RSVPURL returns the public link an invitee follows to answer yes or no.
func RSVPURL(baseURL, tok string, attending bool) string {
	answer := "no"
	if attending {
		answer = "yes"
	}
	return strings.TrimRight(baseURL, "/") + "/rsvp/" + url.PathEscape(tok) + "/" + answer
}

func (s *inviteService) SendEventInvites(ctx context.Context, event *domain.Event, reset bool) (*domain.InviteResult, error) {
	if event.Disabled {
		return nil, domain.ErrEventDisabled
	}
	if reset {
		if err := s.eventMemberRepo.ResetAttendance(ctx, event.ID); err != nil {
			return nil, fmt.Errorf("reset attendance: %w", err)
		}
	}
	list, err := s.eventMemberRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list event members: %w", err)
	}

	organizer := ""
	owner, err := s.userRepo.GetByID(ctx, event.OwnerID)
	switch {
	case err == nil:
		organizer = owner.DisplayName()
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get organizer: %w", err)
	}

	now := s.now()
	next := ""
	if at, err := schedule.NextOccurrence(event, now); err == nil && !at.IsZero() {
		next = at.In(event.Location()).Format(occurrenceLayout)
	} else if err != nil {
		s.logger.WarnContext(ctx, "next occurrence unavailable", "event_id", event.ID, "error", err)
	}

	result := &domain.InviteResult{Failed: []string{}}
	for _, em := range list {
		data := &domain.EventInviteEmailData{
			Email:            em.MemberEmail,
			MemberName:       em.MemberName(),
			OrganizerName:    organizer,
			EventTitle:       event.Title,
			EventDescription: event.Description,
			NextOccurrence:   next,
			YesURL:           RSVPURL(s.baseURL, em.UniqueHash, true),
			NoURL:            RSVPURL(s.baseURL, em.UniqueHash, false),
		}
		if err := s.emailService.SendEventInvite(ctx, data); err != nil {
			s.logger.ErrorContext(ctx, "invite not sent", "event_id", event.ID, "member_id", em.MemberID, "error", err)
			result.Failed = append(result.Failed, em.MemberEmail)
			continue
		}
		result.Sent++
		if err := s.eventMemberRepo.MarkInvited(ctx, em.ID, now.UTC()); err != nil {
			s.logger.WarnContext(ctx, "mark invited failed", "event_member_id", em.ID, "error", err)
		}
	}

	if err := s.eventRepo.MarkInvitesSent(ctx, event.ID, now.UTC()); err != nil {
		return result, fmt.Errorf("mark invites sent: %w", err)
	}
	s.logger.InfoContext(ctx, "invites dispatched", "event_id", event.ID, "sent", result.Sent, "failed", len(result.Failed))
	return result, nil
}
