package export

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"ms-schedule/internal/schedule"
)

// PresentedItem is the interactive view's shape of a ScheduledItem. Text and
// Description are already HTML.
type PresentedItem struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Venue       string `json:"venue"`
	Speaker     string `json:"speaker"`
	Type        string `json:"type"`
	IsFave      bool   `json:"is_fave"`
	Source      string `json:"source"`
	Link        string `json:"link"`
}

type VenueColumn struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func Present(items []schedule.ScheduledItem, loc *time.Location) []PresentedItem {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]PresentedItem, 0, len(items))
	for _, item := range items {
		out = append(out, PresentedItem{
			ID:          item.ID,
			Text:        html.EscapeString(item.Title),
			Title:       item.Title,
			Description: Urlize(item.Description),
			StartDate:   DisplayTime(item.Start, loc),
			EndDate:     DisplayTime(item.End, loc),
			Venue:       slug.Make(item.Venue),
			Speaker:     item.Speaker,
			Type:        item.Type,
			IsFave:      item.IsFavourite,
			Source:      string(item.Source),
			Link:        item.Link,
		})
	}
	return out
}

func VenueColumns(names []string) []VenueColumn {
	cols := make([]VenueColumn, 0, len(names))
	for _, name := range names {
		cols = append(cols, VenueColumn{Key: slug.Make(name), Label: name})
	}
	return cols
}

var urlPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"]+`)

// Urlize escapes text and turns http(s) and www. URLs into anchors.
// Trailing punctuation is kept outside the link.
func Urlize(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		raw := strings.TrimRight(text[start:end], ".,;:!?)'")
		end = start + len(raw)

		b.WriteString(html.EscapeString(text[last:start]))
		href := raw
		if strings.HasPrefix(strings.ToLower(raw), "www.") {
			href = "http://" + raw
		}
		b.WriteString(`<a href="`)
		b.WriteString(html.EscapeString(href))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(raw))
		b.WriteString(`</a>`)
		last = end
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
