package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"embervite/internal/domain"
	"embervite/internal/schedule"
)

type dispatchService struct {
	eventRepo domain.EventRepository
	invites   domain.InviteService
	logger    *slog.Logger
}

// NewDispatchService returns a DispatchService that sends due invites through invites.
func NewDispatchService(eventRepo domain.EventRepository, invites domain.InviteService, logger *slog.Logger) domain.DispatchService {
	return &dispatchService{eventRepo: eventRepo, invites: invites, logger: logger}
}

// DispatchDue sends invites for every enabled event whose next invite time
// after its dispatch anchor is at or before now. Each dispatch starts a new
// occurrence, so prior responses are cleared. A failing event is logged and
// skipped.
func (s *dispatchService) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	events, err := s.eventRepo.ListEnabled(ctx)
	if err != nil {
		return 0, fmt.Errorf("list enabled events: %w", err)
	}

	dispatched := 0
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return dispatched, err
		}
		due, err := schedule.NextInviteTime(event, dispatchAnchor(event))
		if err != nil {
			s.logger.WarnContext(ctx, "invite schedule invalid", "event_id", event.ID, "error", err)
			continue
		}
		if due.IsZero() || due.After(now) {
			continue
		}
		if _, err := s.invites.SendEventInvites(ctx, event, true); err != nil {
			s.logger.ErrorContext(ctx, "scheduled invites failed", "event_id", event.ID, "error", err)
			continue
		}
		dispatched++
	}
	return dispatched, nil
}

// dispatchAnchor is the latest of creation, last enable and last dispatch.
// Slots that passed while the event was disabled are never sent late.
func dispatchAnchor(e *domain.Event) time.Time {
	since := e.CreatedAt
	for _, t := range []*time.Time{e.EnabledAt, e.InvitesSentAt} {
		if t != nil && t.After(since) {
			since = *t
		}
	}
	return since
}
