// Package schedule turns an event's occurrence settings into RFC 5545
// recurrence rules and computes upcoming event and invite times.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"embervite/internal/domain"
)

// RuleString returns the RRULE value (without DTSTART or time-of-day parts)
// for the given occurrence over days.
func RuleString(occ domain.Occurrence, days []string) (string, error) {
	if len(days) == 0 {
		return "", fmt.Errorf("schedule: no days: %w", domain.ErrInvalidInput)
	}
	for _, d := range days {
		if !domain.IsWeekday(d) {
			return "", fmt.Errorf("schedule: bad weekday %q: %w", d, domain.ErrInvalidInput)
		}
	}
	byDay := "BYDAY=" + strings.Join(days, ",")
	switch occ {
	case domain.OccurrenceWeekly:
		return "FREQ=WEEKLY;" + byDay, nil
	case domain.OccurrenceBiweekly:
		return "FREQ=WEEKLY;INTERVAL=2;" + byDay, nil
	case domain.OccurrenceMonthly:
		return "FREQ=MONTHLY;" + byDay + ";BYSETPOS=1", nil
	default:
		return "", fmt.Errorf("schedule: unknown occurrence %q: %w", occ, domain.ErrInvalidInput)
	}
}

// EventRule returns the recurrence of the event itself.
func EventRule(e *domain.Event) (*rrule.RRule, error) {
	return build(e, e.Days, e.Time)
}

// InviteRule returns the recurrence on which invites for the event go out.
// It shares the event's frequency but fires on InviteDay at InviteTime.
func InviteRule(e *domain.Event) (*rrule.RRule, error) {
	return build(e, []string{e.InviteDay}, e.InviteTime)
}

// NextOccurrence returns the first event start strictly after after.
func NextOccurrence(e *domain.Event, after time.Time) (time.Time, error) {
	r, err := EventRule(e)
	if err != nil {
		return time.Time{}, err
	}
	return r.After(after, false), nil
}

// NextInviteTime returns the first invite time strictly after after.
func NextInviteTime(e *domain.Event, after time.Time) (time.Time, error) {
	r, err := InviteRule(e)
	if err != nil {
		return time.Time{}, err
	}
	return r.After(after, false), nil
}

func build(e *domain.Event, days []string, clock string) (*rrule.RRule, error) {
	base, err := RuleString(e.Occurrence, days)
	if err != nil {
		return nil, err
	}
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return nil, err
	}
	r, err := rrule.StrToRRule(fmt.Sprintf("%s;BYHOUR=%d;BYMINUTE=%d;BYSECOND=0", base, hour, minute))
	if err != nil {
		return nil, fmt.Errorf("schedule: parse rule: %w", err)
	}
	r.DTStart(anchor(e, hour, minute))
	return r, nil
}

// anchor is the Monday of the week the event was created, at the given time
// in the event's zone. Biweekly rules count their weeks from here.
func anchor(e *domain.Event, hour, minute int) time.Time {
	loc := e.Location()
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	c := created.In(loc)
	offset := (int(c.Weekday()) + 6) % 7
	monday := time.Date(c.Year(), c.Month(), c.Day()-offset, hour, minute, 0, 0, loc)
	return monday
}

// ParseClock splits an HH:MM string.
func ParseClock(s string) (hour, minute int, err error) {
	if !domain.IsClock(s) {
		return 0, 0, fmt.Errorf("schedule: bad time %q: %w", s, domain.ErrInvalidInput)
	}
	hour, _ = strconv.Atoi(s[:2])
	minute, _ = strconv.Atoi(s[3:])
	return hour, minute, nil
}
