package schedule

import (
	"net/url"
	"strconv"
)

// Filters narrows an aggregated schedule. A nil Venues means no venue filter.
type Filters struct {
	FavouritesOnly bool
	Venues         map[string]struct{}
}

// ParseFilters reads is_favourite and venue from a query string. Values
// that do not parse are ignored rather than rejected.
func ParseFilters(q url.Values) Filters {
	var f Filters

	if raw := q.Get("is_favourite"); raw != "" {
		if fav, err := strconv.ParseBool(raw); err == nil {
			f.FavouritesOnly = fav
		}
	}

	for _, v := range q["venue"] {
		if v == "" {
			continue
		}
		if f.Venues == nil {
			f.Venues = make(map[string]struct{})
		}
		f.Venues[v] = struct{}{}
	}
	return f
}

// Apply runs the favourite filter, then the venue filter.
func (f Filters) Apply(items []ScheduledItem) []ScheduledItem {
	if f.FavouritesOnly {
		items = keep(items, func(i ScheduledItem) bool { return i.IsFavourite })
	}
	if f.Venues != nil {
		items = keep(items, func(i ScheduledItem) bool {
			_, ok := f.Venues[i.Venue]
			return ok
		})
	}
	return items
}

func keep(items []ScheduledItem, pred func(ScheduledItem) bool) []ScheduledItem {
	out := make([]ScheduledItem, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}
