package calendar

import (
	"bytes"
	"errors"
	"fmt"

	ical "github.com/arran4/golang-ical"

	"ms-schedule/internal/models"
)

var ErrEmptyFeed = errors.New("empty ICS body")

// Parse reads the VEVENTs of an ICS payload. Events without a UID or DTSTART are
// skipped; a missing DTEND makes the event zero-length.
func Parse(body []byte) ([]models.CalendarEvent, []error, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil, ErrEmptyFeed
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("parse calendar: %w", err)
	}

	var (
		events  []models.CalendarEvent
		skipped []error
	)
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		events = append(events, ev)
	}
	return events, skipped, nil
}

func parseVEvent(ve *ical.VEvent) (models.CalendarEvent, error) {
	var out models.CalendarEvent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("event %s: %w", out.UID, err)
	}
	out.StartDT = start

	end, err := ve.GetEndAt()
	if err != nil || end.Before(start) {
		end = start
	}
	out.EndDT = end
	return out, nil
}
