// Package dbtest sets up an in-memory SQLite store for tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ms-schedule/internal/models"
	"ms-schedule/internal/schedule/db"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var tables = []interface{}{
	(*models.User)(nil),
	(*models.Venue)(nil),
	(*models.Proposal)(nil),
	(*models.CalendarSource)(nil),
	(*models.CalendarEvent)(nil),
	(*models.FavouriteProposal)(nil),
	(*models.FavouriteCalendarEvent)(nil),
}

// Setup returns a store over a private in-memory database with every table created.
func Setup(t *testing.T) *db.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	// each connection to :memory: is its own database
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	ctx := context.Background()
	for _, model := range tables {
		if _, err := bunDB.NewCreateTable().Model(model).Exec(ctx); err != nil {
			t.Fatalf("Failed to create table for %T: %v", model, err)
		}
	}
	return &db.DB{Bun: bunDB}
}

func Venue(t *testing.T, d *db.DB, name string, priority int) *models.Venue {
	t.Helper()
	v := &models.Venue{Name: name, Priority: priority}
	if err := d.CreateVenue(context.Background(), v); err != nil {
		t.Fatalf("Failed to create venue %s: %v", name, err)
	}
	return v
}

func User(t *testing.T, d *db.DB, id, name string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Name: name, Email: id + "@example.com"}
	if err := d.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("Failed to create user %s: %v", id, err)
	}
	return u
}

// Proposal inserts p, filling a scheduled slot in venue when venue is non-nil.
func Proposal(t *testing.T, d *db.DB, p models.Proposal, venue *models.Venue, start time.Time, minutes int) *models.Proposal {
	t.Helper()
	if venue != nil {
		p.ScheduledVenue = &venue.ID
		p.ScheduledTime = &start
		p.ScheduledDuration = &minutes
	}
	if p.Type == "" {
		p.Type = models.TypeTalk
	}
	if p.State == "" {
		p.State = models.StateAccepted
	}
	if err := d.CreateProposal(context.Background(), &p); err != nil {
		t.Fatalf("Failed to create proposal %s: %v", p.Title, err)
	}
	return &p
}

func Source(t *testing.T, d *db.DB, name string, enabled bool, mainVenue string, priority int) *models.CalendarSource {
	t.Helper()
	s := &models.CalendarSource{
		Name:      name,
		URL:       "https://example.com/" + name + ".ics",
		Enabled:   enabled,
		MainVenue: mainVenue,
		Priority:  priority,
	}
	if err := d.CreateSource(context.Background(), s); err != nil {
		t.Fatalf("Failed to create source %s: %v", name, err)
	}
	return s
}

func Event(t *testing.T, d *db.DB, src *models.CalendarSource, uid, summary, location string, start time.Time, length time.Duration) *models.CalendarEvent {
	t.Helper()
	e := &models.CalendarEvent{
		SourceID: src.ID,
		UID:      uid,
		Summary:  summary,
		Location: location,
		StartDT:  start,
		EndDT:    start.Add(length),
	}
	if err := d.CreateCalendarEvent(context.Background(), e); err != nil {
		t.Fatalf("Failed to create event %s: %v", uid, err)
	}
	return e
}
