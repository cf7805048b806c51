package domain

import (
	"context"
	"regexp"
	"strings"
	"time"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailRegexp.MatchString(s)
}

// Member is a person an organizer can invite to events.
// swagger:model Member
type Member struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name.
func (m *Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// MemberInput is every field an organizer may set on a member.
type MemberInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Normalize trims whitespace and lower-cases the email in place.
func (in *MemberInput) Normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
}

// Validate returns one message per invalid field; nil means valid.
func (in MemberInput) Validate() []string {
	var errs []string
	if in.FirstName == "" {
		errs = append(errs, "first_name is required")
	}
	if in.Email == "" {
		errs = append(errs, "email is required")
	} else if !IsEmail(in.Email) {
		errs = append(errs, "invalid email format")
	}
	if len(in.Phone) > 32 {
		errs = append(errs, "phone must be at most 32 characters")
	}
	return errs
}

// Apply copies the input onto m.
func (in MemberInput) Apply(m *Member) {
	m.FirstName = in.FirstName
	m.LastName = in.LastName
	m.Email = in.Email
	m.Phone = in.Phone
}

// MemberRepository defines the interface for member storage
type MemberRepository interface {
	Create(ctx context.Context, member *Member) error
	GetByID(ctx context.Context, id string) (*Member, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Member, error)
	Update(ctx context.Context, member *Member) error
	Delete(ctx context.Context, id string) error
}

// MemberService defines organizer-scoped member operations.
type MemberService interface {
	ListMembers(ctx context.Context, ownerID string) ([]*Member, error)
	GetMember(ctx context.Context, memberID, ownerID string) (*Member, error)
	SaveMember(ctx context.Context, memberID, ownerID string, in MemberInput) (member *Member, created bool, err error)
	DeleteMember(ctx context.Context, memberID, ownerID string) (*Member, error)
	// ExportMembers returns the owner's members as a JSON document, or nil when there are none.
	ExportMembers(ctx context.Context, ownerID string) ([]byte, error)
}

// DashboardService bundles the data feeds behind the organizer dashboard.
type DashboardService interface {
	Dashboard(ctx context.Context, ownerID string) (*Dashboard, error)
}

// Dashboard is everything the organizer dashboard renders.
// swagger:model Dashboard
type Dashboard struct {
	Events  []*Event  `json:"events"`
	Members []*Member `json:"members"`
}
