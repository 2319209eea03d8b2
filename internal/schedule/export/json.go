package export

import (
	"encoding/json"

	"ms-schedule/internal/schedule"
)

type jsonItem struct {
	ID          interface{} `json:"id"`
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date"`
	Venue       string      `json:"venue"`
	Title       string      `json:"title"`
	Speaker     string      `json:"speaker"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
	MayRecord   bool        `json:"may_record"`
	IsFave      bool        `json:"is_fave"`
	Source      string      `json:"source"`
	Link        string      `json:"link"`
	Cost        *string     `json:"cost,omitempty"`
}

// JSON renders a bare top-level array. Older consumers expect exactly that, so
// it is not wrapped in an object.
func JSON(items []schedule.ScheduledItem, opts Options) ([]byte, error) {
	loc := opts.location()
	out := make([]jsonItem, 0, len(items))
	for _, item := range items {
		var id interface{} = item.ID
		if item.Source == schedule.SourceDatabase {
			id = item.RowID
		}
		out = append(out, jsonItem{
			ID:          id,
			StartDate:   DisplayTime(item.Start, loc),
			EndDate:     DisplayTime(item.End, loc),
			Venue:       item.Venue,
			Title:       item.Title,
			Speaker:     item.Speaker,
			Description: item.Description,
			Type:        item.Type,
			MayRecord:   item.MayRecord,
			IsFave:      item.IsFavourite,
			Source:      string(item.Source),
			Link:        item.Link,
			Cost:        item.Cost,
		})
	}
	return json.Marshal(out)
}
