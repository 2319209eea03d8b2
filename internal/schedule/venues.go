package schedule

import (
	"context"
	"sort"

	"ms-schedule/internal/models"
)

// ResolvePriorityOrderedVenues lists venue names in display order, keeping only
// names in allowed. Venue table names come first (highest priority first),
// then the names contributed by enabled calendar sources.
func (s *ScheduleService) ResolvePriorityOrderedVenues(ctx context.Context, allowed map[string]struct{}) ([]string, error) {
	venues, err := s.DB.ListVenues(ctx)
	if err != nil {
		return nil, err
	}
	sources, err := s.DB.ListEnabledSources(ctx)
	if err != nil {
		return nil, err
	}
	return priorityOrderedVenues(venues, sources, allowed), nil
}

func priorityOrderedVenues(venues []models.Venue, sources []models.CalendarSource, allowed map[string]struct{}) []string {
	sort.SliceStable(venues, func(i, j int) bool { return venues[i].Priority < venues[j].Priority })
	reverse(venues)
	venueNames := make([]string, 0, len(venues))
	for _, v := range venues {
		venueNames = append(venueNames, v.Name)
	}

	sort.SliceStable(sources, func(i, j int) bool { return sources[i].Priority < sources[j].Priority })
	reverse(sources)
	// overrides first (blank when a source has none), then the locations of
	// every event from sources without an override
	sourceNames := make([]string, 0, len(sources))
	for _, src := range sources {
		sourceNames = append(sourceNames, src.MainVenue)
	}
	for i := range sources {
		src := sources[i]
		if src.MainVenue != "" {
			continue
		}
		for _, e := range src.Events {
			sourceNames = append(sourceNames, e.Venue(&src))
		}
	}

	seen := make(map[string]struct{})
	names := []string{}
	for _, list := range [][]string{venueNames, sourceNames} {
		for _, name := range list {
			if _, dup := seen[name]; dup {
				continue
			}
			if _, ok := allowed[name]; !ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
