package schedule

import "time"

type SourceTag string

const (
	SourceDatabase SourceTag = "database"
	SourceExternal SourceTag = "external"
)

// ScheduledItem is the normalized view of one schedule entry. Items are built
// per request and never stored.
type ScheduledItem struct {
	// ID is the proposal id for database items and the feed UID for external ones.
	ID          string
	RowID       int64
	Start       time.Time
	End         time.Time
	Venue       string
	Title       string
	Speaker     string
	Description string
	Type        string
	MayRecord   bool
	IsFavourite bool
	Source      SourceTag
	Link        string
	Slug        string
	Cost        *string
}

// Duration is End minus Start.
func (i ScheduledItem) Duration() time.Duration {
	return i.End.Sub(i.Start)
}
