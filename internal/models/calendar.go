package models

import (
	"time"

	"github.com/gosimple/slug"
	"github.com/uptrace/bun"
)

// UnknownVenue is reported for external events with no location at all.
const UnknownVenue = "(Unknown)"

// CalendarSource is an imported iCalendar feed.
type CalendarSource struct {
	bun.BaseModel `bun:"table:calendar_sources"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull"`
	URL         string    `bun:"url,notnull"`
	Enabled     bool      `bun:"enabled,notnull"`
	MainVenue   string    `bun:"main_venue,nullzero"`
	Priority    int       `bun:"priority,notnull"`
	LastFetched time.Time `bun:"last_fetched,nullzero"`

	Events []*CalendarEvent `bun:"rel:has-many,join:id=source_id"`
}

type CalendarEvent struct {
	bun.BaseModel `bun:"table:calendar_events"`

	ID          int64     `bun:"id,pk,autoincrement"`
	SourceID    int64     `bun:"source_id,notnull"`
	UID         string    `bun:"uid,notnull"`
	Summary     string    `bun:"summary"`
	Description string    `bun:"description"`
	Location    string    `bun:"location"`
	StartDT     time.Time `bun:"start_dt,notnull"`
	EndDT       time.Time `bun:"end_dt,notnull"`

	Source *CalendarSource `bun:"rel:belongs-to,join:source_id=id"`
}

func (e *CalendarEvent) Slug() string {
	return slug.Make(e.Summary)
}

// Venue is the source override when present, else the event's own location.
func (e *CalendarEvent) Venue(src *CalendarSource) string {
	if src != nil && src.MainVenue != "" {
		return src.MainVenue
	}
	if e.Location != "" {
		return e.Location
	}
	return UnknownVenue
}
