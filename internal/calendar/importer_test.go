package calendar

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-schedule/internal/logger"
	"ms-schedule/internal/metrics"
	"ms-schedule/internal/schedule/db/dbtest"
)

const feed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//village//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:solder-1\r\n" +
	"DTSTAMP:20160801T090000Z\r\n" +
	"DTSTART:20160805T130000Z\r\n" +
	"DTEND:20160805T140000Z\r\n" +
	"SUMMARY:Soldering\r\n" +
	"LOCATION:Hardware Tent\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:lock-1\r\n" +
	"DTSTAMP:20160801T090000Z\r\n" +
	"DTSTART:20160805T150000Z\r\n" +
	"SUMMARY:Lockpicking\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTART:20160805T150000Z\r\n" +
	"SUMMARY:No UID\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParse(t *testing.T) {
	events, skipped, err := Parse([]byte(feed))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Len(t, skipped, 1)

	assert.Equal(t, "solder-1", events[0].UID)
	assert.Equal(t, "Hardware Tent", events[0].Location)
	assert.True(t, events[0].StartDT.Equal(time.Date(2016, 8, 5, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Hour, events[0].EndDT.Sub(events[0].StartDT))

	assert.Equal(t, events[1].StartDT, events[1].EndDT)
}

func TestParseEmpty(t *testing.T) {
	_, _, err := Parse([]byte("  "))
	assert.ErrorIs(t, err, ErrEmptyFeed)
}

func TestImportAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/village.ics" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	store := dbtest.Setup(t)
	ctx := context.Background()

	village := dbtest.Source(t, store, "village", true, "", 0)
	village.URL = srv.URL + "/village.ics"
	require.NoError(t, store.UpdateSource(ctx, village))

	broken := dbtest.Source(t, store, "broken", true, "", 0)
	broken.URL = srv.URL + "/missing.ics"
	require.NoError(t, store.UpdateSource(ctx, broken))

	disabled := dbtest.Source(t, store, "disabled", false, "", 0)
	disabled.URL = srv.URL + "/village.ics"
	require.NoError(t, store.UpdateSource(ctx, disabled))

	var logs bytes.Buffer
	imp := NewImporter(store, 5*time.Second, logger.NewTestLogger(&logs), metrics.New())
	err := imp.ImportAll(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Contains(t, logs.String(), "[village] imported 2 events")

	sources, err := store.ListEnabledSources(ctx)
	require.NoError(t, err)
	counts := map[string]int{}
	for _, s := range sources {
		counts[s.Name] = len(s.Events)
	}
	assert.Equal(t, map[string]int{"village": 2, "broken": 0}, counts)

	all, err := store.ListAllSources(ctx)
	require.NoError(t, err)
	for _, s := range all {
		if s.Name == "disabled" {
			assert.True(t, s.LastFetched.IsZero())
		}
		if s.Name == "village" {
			assert.False(t, s.LastFetched.IsZero())
		}
	}
}

func TestImportOversizeFeedKeepsExistingEvents(t *testing.T) {
	body := feed
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	store := dbtest.Setup(t)
	ctx := context.Background()
	village := dbtest.Source(t, store, "village", true, "", 0)
	village.URL = srv.URL + "/village.ics"
	require.NoError(t, store.UpdateSource(ctx, village))

	imp := NewImporter(store, 5*time.Second, logger.NewTestLogger(&bytes.Buffer{}), metrics.New())
	require.NoError(t, imp.ImportAll(ctx))

	// a feed cut at an event boundary still parses, so the cap must reject it
	imp.MaxFeedBytes = int64(strings.Index(feed, "BEGIN:VEVENT\r\nUID:lock-1"))
	_, err := imp.ImportSource(ctx, *village)
	require.ErrorIs(t, err, ErrFeedTooLarge)

	sources, err := store.ListEnabledSources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Len(t, sources[0].Events, 2)
}

func TestImportAllLogsSummaryAndExposesMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/village.ics" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	store := dbtest.Setup(t)
	ctx := context.Background()
	village := dbtest.Source(t, store, "village", true, "", 0)
	village.URL = srv.URL + "/village.ics"
	require.NoError(t, store.UpdateSource(ctx, village))
	broken := dbtest.Source(t, store, "broken", true, "", 0)
	broken.URL = srv.URL + "/missing.ics"
	require.NoError(t, store.UpdateSource(ctx, broken))

	var logs bytes.Buffer
	m := metrics.New()
	imp := NewImporter(store, 5*time.Second, logger.NewTestLogger(&logs), m)
	require.Error(t, imp.ImportAll(ctx))
	assert.Contains(t, logs.String(), "Import finished: 1/2 sources ok, 2 events")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `schedule_calendar_imports_total{result="ok",source="village"} 1`)
	assert.Contains(t, rec.Body.String(), `schedule_calendar_imports_total{result="error",source="broken"} 1`)
}
