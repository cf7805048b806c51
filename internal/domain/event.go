package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Occurrence is how often an event repeats.
type Occurrence string

const (
	OccurrenceWeekly   Occurrence = "weekly"
	OccurrenceBiweekly Occurrence = "biweekly"
	OccurrenceMonthly  Occurrence = "monthly"
)

// Occurrences lists the accepted Occurrence values in display order.
var Occurrences = []Occurrence{OccurrenceWeekly, OccurrenceBiweekly, OccurrenceMonthly}

// Weekdays lists the accepted weekday codes (RFC 5545 BYDAY values).
var Weekdays = []string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

var clockRegexp = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// IsWeekday reports whether code is one of Weekdays.
func IsWeekday(code string) bool {
	for _, d := range Weekdays {
		if d == code {
			return true
		}
	}
	return false
}

// IsClock reports whether s is a 24-hour HH:MM time.
func IsClock(s string) bool {
	return clockRegexp.MatchString(s)
}

// Event is a recurring gathering owned by an organizer.
// Invites can only be sent while Disabled is false.
// swagger:model Event
type Event struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Occurrence    Occurrence `json:"occurrence"`
	Days          []string   `json:"days"`
	Time          string     `json:"time"`
	InviteDay     string     `json:"invite_day"`
	InviteTime    string     `json:"invite_time"`
	Timezone      string     `json:"timezone"`
	Disabled      bool       `json:"disabled"`
	InvitesSentAt *time.Time `json:"invites_sent_at"`
	EnabledAt     *time.Time `json:"enabled_at"` // last switch from disabled to enabled
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Location returns the event's time zone, or UTC when unset or unknown.
func (e *Event) Location() *time.Location {
	if e.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EventInput is every field an organizer may set on an event. Anything else is rejected.
type EventInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Occurrence  Occurrence `json:"occurrence"`
	Days        []string   `json:"days"`
	Time        string     `json:"time"`
	InviteDay   string     `json:"invite_day"`
	InviteTime  string     `json:"invite_time"`
	Timezone    string     `json:"timezone"`
}

// Normalize trims whitespace and upper-cases weekday codes in place.
func (in *EventInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Occurrence = Occurrence(strings.ToLower(strings.TrimSpace(string(in.Occurrence))))
	for i, d := range in.Days {
		in.Days[i] = strings.ToUpper(strings.TrimSpace(d))
	}
	in.Time = strings.TrimSpace(in.Time)
	in.InviteDay = strings.ToUpper(strings.TrimSpace(in.InviteDay))
	in.InviteTime = strings.TrimSpace(in.InviteTime)
	in.Timezone = strings.TrimSpace(in.Timezone)
	if in.Timezone == "" {
		in.Timezone = "UTC"
	}
}

// Validate returns one message per invalid field; nil means valid.
func (in EventInput) Validate() []string {
	var errs []string
	if in.Title == "" {
		errs = append(errs, "title is required")
	} else if len(in.Title) > 200 {
		errs = append(errs, "title must be at most 200 characters")
	}
	switch in.Occurrence {
	case OccurrenceWeekly, OccurrenceBiweekly, OccurrenceMonthly:
	case "":
		errs = append(errs, "occurrence is required")
	default:
		errs = append(errs, fmt.Sprintf("occurrence must be one of %v", Occurrences))
	}
	if len(in.Days) == 0 {
		errs = append(errs, "days must contain at least one weekday")
	}
	seen := make(map[string]struct{}, len(in.Days))
	for _, d := range in.Days {
		if !IsWeekday(strings.ToUpper(d)) {
			errs = append(errs, fmt.Sprintf("days: %q is not a weekday code", d))
			continue
		}
		if _, ok := seen[d]; ok {
			errs = append(errs, fmt.Sprintf("days: %q listed more than once", d))
		}
		seen[d] = struct{}{}
	}
	if !IsClock(in.Time) {
		errs = append(errs, "time must be HH:MM")
	}
	if !IsWeekday(strings.ToUpper(in.InviteDay)) {
		errs = append(errs, "invite_day must be a weekday code")
	}
	if !IsClock(in.InviteTime) {
		errs = append(errs, "invite_time must be HH:MM")
	}
	if in.Timezone != "" {
		if _, err := time.LoadLocation(in.Timezone); err != nil {
			errs = append(errs, "timezone is not a known IANA zone")
		}
	}
	return errs
}

// Apply copies the input onto e. Ownership, ID, and Disabled are never touched.
func (in EventInput) Apply(e *Event) {
	e.Title = in.Title
	e.Description = in.Description
	e.Occurrence = in.Occurrence
	e.Days = append([]string(nil), in.Days...)
	e.Time = in.Time
	e.InviteDay = in.InviteDay
	e.InviteTime = in.InviteTime
	e.Timezone = in.Timezone
}

// Attendance groups an event's invitees by response.
// swagger:model Attendance
type Attendance struct {
	Invited      []*EventMemberDetail `json:"invited"`
	Attending    []*EventMemberDetail `json:"attending"`
	NotAttending []*EventMemberDetail `json:"not_attending"`
}

// InviteResult summarizes one invite dispatch run.
// swagger:model InviteResult
type InviteResult struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Event, error)
	ListEnabled(ctx context.Context) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	SetDisabled(ctx context.Context, id string, disabled bool) (*Event, error)
	MarkInvitesSent(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// CalendarEncoder renders an event as an iCalendar document.
type CalendarEncoder interface {
	Encode(event *Event, now time.Time) ([]byte, error)
}

// EventService defines organizer-scoped event operations.
// Every method treats an event owned by someone else as ErrNotFound.
type EventService interface {
	ListEvents(ctx context.Context, ownerID string) ([]*Event, error)
	GetEvent(ctx context.Context, eventID, ownerID string) (*Event, error)
	// SaveEvent creates a disabled event when eventID is NewRecordID, otherwise updates it in place.
	SaveEvent(ctx context.Context, eventID, ownerID string, in EventInput) (event *Event, created bool, err error)
	ToggleEvent(ctx context.Context, eventID, ownerID string) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, ownerID string) (*Event, error)
	SetEventMembers(ctx context.Context, eventID, ownerID string, memberIDs []string) ([]*EventMemberDetail, error)
	GetAttendance(ctx context.Context, eventID, ownerID string) (*Attendance, error)
	AttendanceMap(ctx context.Context, eventID, ownerID string) (map[string]*bool, error)
	SendInvites(ctx context.Context, eventID, ownerID string) (*InviteResult, error)
	EventCalendar(ctx context.Context, eventID, ownerID string) ([]byte, error)
}

// InviteService sends invite emails for an event's invite list.
type InviteService interface {
	// SendEventInvites emails every invitee. When reset is true prior responses are cleared first.
	SendEventInvites(ctx context.Context, event *Event, reset bool) (*InviteResult, error)
}

// DispatchService sends invites for every enabled event whose invite time has come.
type DispatchService interface {
	DispatchDue(ctx context.Context, now time.Time) (dispatched int, err error)
}
