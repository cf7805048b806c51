package services

import (
	"context"

	"embervite/internal/domain"
)

type dashboardService struct {
	events  domain.EventService
	members domain.MemberService
}

// NewDashboardService composes the organizer dashboard from the event and member services.
func NewDashboardService(events domain.EventService, members domain.MemberService) domain.DashboardService {
	return &dashboardService{events: events, members: members}
}

func (s *dashboardService) Dashboard(ctx context.Context, ownerID string) (*domain.Dashboard, error) {
	events, err := s.events.ListEvents(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	members, err := s.members.ListMembers(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &domain.Dashboard{Events: events, Members: members}, nil
}
