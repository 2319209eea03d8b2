package db

import (
	"context"
	"fmt"
	"time"

	"ms-schedule/internal/models"

	"github.com/uptrace/bun"
)

// ListEnabledSources → enabled sources in id order, each with its events in id order
func (d *DB) ListEnabledSources(ctx context.Context) ([]models.CalendarSource, error) {
	var sources []models.CalendarSource
	err := d.Bun.NewSelect().
		Model(&sources).
		Relation("Events", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("id ASC")
		}).
		Where("?TableAlias.enabled = ?", true).
		OrderExpr("?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list enabled calendar sources: %w", err)
	}
	return sources, nil
}

// ListAllSources → every source, enabled or not, without events
func (d *DB) ListAllSources(ctx context.Context) ([]models.CalendarSource, error) {
	var sources []models.CalendarSource
	err := d.Bun.NewSelect().
		Model(&sources).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list calendar sources: %w", err)
	}
	return sources, nil
}

// GetCalendarEvent → one event by id together with its source
func (d *DB) GetCalendarEvent(ctx context.Context, id int64) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	err := d.Bun.NewSelect().
		Model(&event).
		Relation("Source").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &event, nil
}

func (d *DB) CreateSource(ctx context.Context, source *models.CalendarSource) error {
	_, err := d.Bun.NewInsert().Model(source).Exec(ctx)
	return err
}

func (d *DB) UpdateSource(ctx context.Context, source *models.CalendarSource) error {
	_, err := d.Bun.NewUpdate().
		Model(source).
		Column("name", "url", "enabled", "main_venue", "priority", "last_fetched").
		WherePK().
		Exec(ctx)
	return err
}

func (d *DB) CreateCalendarEvent(ctx context.Context, event *models.CalendarEvent) error {
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

// ReplaceSourceEvents swaps a source's events for a freshly imported set in one
// transaction. Rows whose UID survives are updated in place so their ids, and the
// favourites pointing at them, are kept.
func (d *DB) ReplaceSourceEvents(ctx context.Context, sourceID int64, events []models.CalendarEvent, fetchedAt time.Time) (int, error) {
	written := 0
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var existing []models.CalendarEvent
		if err := tx.NewSelect().
			Model(&existing).
			Where("source_id = ?", sourceID).
			Scan(ctx); err != nil {
			return err
		}

		byUID := make(map[string]int64, len(existing))
		for _, e := range existing {
			byUID[e.UID] = e.ID
		}

		keep := make(map[int64]struct{}, len(events))
		for i := range events {
			ev := events[i]
			ev.SourceID = sourceID
			if id, ok := byUID[ev.UID]; ok {
				ev.ID = id
				keep[id] = struct{}{}
				if _, err := tx.NewUpdate().
					Model(&ev).
					Column("summary", "description", "location", "start_dt", "end_dt").
					WherePK().
					Exec(ctx); err != nil {
					return err
				}
			} else {
				ev.ID = 0
				if _, err := tx.NewInsert().Model(&ev).Exec(ctx); err != nil {
					return err
				}
				// a feed may repeat a UID; later copies update the first
				byUID[ev.UID] = ev.ID
				keep[ev.ID] = struct{}{}
			}
			written++
		}

		var stale []int64
		for _, e := range existing {
			if _, ok := keep[e.ID]; !ok {
				stale = append(stale, e.ID)
			}
		}
		if len(stale) > 0 {
			if _, err := tx.NewDelete().
				Model((*models.FavouriteCalendarEvent)(nil)).
				Where("event_id IN (?)", bun.In(stale)).
				Exec(ctx); err != nil {
				return err
			}
			if _, err := tx.NewDelete().
				Model((*models.CalendarEvent)(nil)).
				Where("id IN (?)", bun.In(stale)).
				Exec(ctx); err != nil {
				return err
			}
		}

		_, err := tx.NewUpdate().
			Model((*models.CalendarSource)(nil)).
			Set("last_fetched = ?", fetchedAt).
			Where("id = ?", sourceID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("replace events for source %d: %w", sourceID, err)
	}
	return written, nil
}
