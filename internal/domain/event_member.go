package domain

import (
	"context"
	"time"
)

// EventMember pairs one event with one invited member.
// UniqueHash is the bearer token in the invitee's RSVP links.
// Attending is nil until the invitee responds.
// swagger:model EventMember
type EventMember struct {
	ID          string     `json:"id"`
	EventID     string     `json:"event_id"`
	MemberID    string     `json:"member_id"`
	UniqueHash  string     `json:"-"`
	Attending   *bool      `json:"attending"`
	InvitedAt   *time.Time `json:"invited_at"`
	RespondedAt *time.Time `json:"responded_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// EventMemberDetail is an EventMember joined with what a confirmation or attendance view shows.
// swagger:model EventMemberDetail
type EventMemberDetail struct {
	EventMember
	EventTitle      string `json:"event_title"`
	MemberFirstName string `json:"member_first_name"`
	MemberLastName  string `json:"member_last_name"`
	MemberEmail     string `json:"member_email"`
}

// MemberName joins the member's first and last name.
func (d *EventMemberDetail) MemberName() string {
	m := Member{FirstName: d.MemberFirstName, LastName: d.MemberLastName}
	return m.FullName()
}

// EventMemberRepository defines storage for the event/member join.
type EventMemberRepository interface {
	// Create returns ErrDuplicateToken on a token collision and ErrAlreadyInvited when the pairing exists.
	Create(ctx context.Context, em *EventMember) error
	ListByEventID(ctx context.Context, eventID string) ([]*EventMemberDetail, error)
	GetByUniqueHash(ctx context.Context, hash string) (*EventMemberDetail, error)
	// SetAttendingByHash records a response and returns the updated row; ErrNotFound when no row matches.
	SetAttendingByHash(ctx context.Context, hash string, attending bool, at time.Time) (*EventMemberDetail, error)
	// DeleteByEventExcept removes the event's rows whose member is not in keep.
	DeleteByEventExcept(ctx context.Context, eventID string, keep []string) error
	MarkInvited(ctx context.Context, id string, at time.Time) error
	ResetAttendance(ctx context.Context, eventID string) error
}

// RSVPService records invitee responses without authentication.
type RSVPService interface {
	Confirm(ctx context.Context, token string, attending bool) (*EventMemberDetail, error)
}
