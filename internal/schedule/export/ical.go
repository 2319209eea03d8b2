package export

import (
	ical "github.com/arran4/golang-ical"

	"ms-schedule/internal/schedule"
)

// ICal renders one VCALENDAR named after the conference with a VEVENT per item.
func ICal(items []schedule.ScheduledItem, opts Options) []byte {
	cal := ical.NewCalendar()
	cal.SetProductId("-//ms-schedule//schedule//EN")
	cal.SetVersion("2.0")
	cal.CalendarProperties = append(cal.CalendarProperties, ical.CalendarProperty{
		BaseProperty: ical.BaseProperty{IANAToken: "SUMMARY", Value: opts.Title},
	})
	cal.SetName(opts.Title)
	cal.SetXWRCalName(opts.Title)
	cal.SetXWRCalDesc(opts.Title)

	stamp := opts.now()
	for _, item := range items {
		ev := cal.AddEvent(item.ID)
		ev.SetDtStampTime(stamp)
		ev.SetSummary(item.Title)
		ev.SetLocation(item.Venue)
		ev.SetStartAt(item.Start)
		ev.SetEndAt(item.End)
	}
	return []byte(cal.Serialize())
}
