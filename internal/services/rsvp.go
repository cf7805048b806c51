package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"embervite/internal/domain"
)

var rsvpTokenRegexp = regexp.MustCompile(`^[0-9a-f]{6,64}$`)

// ValidRSVPToken reports whether tok has the shape of an invite token.
func ValidRSVPToken(tok string) bool {
	return rsvpTokenRegexp.MatchString(tok)
}

type rsvpService struct {
	eventMemberRepo domain.EventMemberRepository
	contextTimeout  time.Duration
	now             func() time.Time
}

func NewRSVPService(eventMemberRepo domain.EventMemberRepository, timeout time.Duration) domain.RSVPService {
	return &rsvpService{eventMemberRepo: eventMemberRepo, contextTimeout: timeout, now: time.Now}
}

// Confirm records the invitee's answer. The latest answer wins.
func (s *rsvpService) Confirm(ctx context.Context, tok string, attending bool) (*domain.EventMemberDetail, error) {
	if !ValidRSVPToken(tok) {
		return nil, domain.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	detail, err := s.eventMemberRepo.SetAttendingByHash(ctx, tok, attending, s.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("record response: %w", err)
	}
	return detail, nil
}
