package calendar

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"embervite/internal/domain"
	"embervite/internal/schedule"
)

// DefaultDuration is the length given to each occurrence; events carry no end time.
const DefaultDuration = 2 * time.Hour

type icalEncoder struct {
	productID string
	domain    string
	duration  time.Duration
}

// NewEncoder returns a CalendarEncoder producing one recurring VEVENT per event.
// UIDs take the form <event-id>@uidDomain.
func NewEncoder(productID, uidDomain string) domain.CalendarEncoder {
	return &icalEncoder{productID: productID, domain: uidDomain, duration: DefaultDuration}
}

func (e *icalEncoder) Encode(ev *domain.Event, now time.Time) ([]byte, error) {
	rule, err := schedule.RuleString(ev.Occurrence, ev.Days)
	if err != nil {
		return nil, err
	}
	start, err := schedule.NextOccurrence(ev, now)
	if err != nil {
		return nil, err
	}
	if start.IsZero() {
		return nil, fmt.Errorf("event %s has no upcoming occurrence: %w", ev.ID, domain.ErrInvalidInput)
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(e.productID)

	vev := cal.AddEvent(fmt.Sprintf("%s@%s", ev.ID, e.domain))
	vev.SetDtStampTime(now)
	vev.SetCreatedTime(ev.CreatedAt)
	vev.SetModifiedAt(ev.UpdatedAt)
	vev.SetStartAt(start)
	vev.SetEndAt(start.Add(e.duration))
	vev.SetSummary(ev.Title)
	if ev.Description != "" {
		vev.SetDescription(ev.Description)
	}
	vev.AddRrule(rule)

	return []byte(cal.Serialize()), nil
}
