// Package export serializes aggregated schedules.
package export

import (
	"errors"
	"fmt"
	"time"

	"ms-schedule/internal/schedule"
)

const (
	FormatJSON = "json"
	FormatFrab = "frab"
	FormatICal = "ical"
)

var ErrUnknownFormat = errors.New("unknown export format")

// DisplayLayout is the timestamp format used by the JSON export and the
// interactive view. Seconds are always rendered as zero.
const DisplayLayout = "2006-01-02 15:04:00"

type Options struct {
	Title    string
	Location *time.Location
	// Now stamps generated documents; time.Now when nil.
	Now func() time.Time
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// ContentType is the response media type for a format.
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatFrab:
		return "application/xml"
	case FormatICal:
		return "text/calendar"
	default:
		return "application/octet-stream"
	}
}

func Export(format string, items []schedule.ScheduledItem, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return JSON(items, opts)
	case FormatFrab:
		return Frab(items, opts)
	case FormatICal:
		return ICal(items, opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// DisplayTime renders t in loc with seconds zeroed.
func DisplayTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DisplayLayout)
}
