// Package calendar imports external iCalendar feeds into the schedule store.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ms-schedule/internal/logger"
	"ms-schedule/internal/metrics"
	"ms-schedule/internal/models"
)

const maxFeedBytes = 10 << 20

var ErrFeedTooLarge = errors.New("calendar feed exceeds size limit")

type SourceStore interface {
	ListAllSources(ctx context.Context) ([]models.CalendarSource, error)
	ReplaceSourceEvents(ctx context.Context, sourceID int64, events []models.CalendarEvent, fetchedAt time.Time) (int, error)
}

type Importer struct {
	Store   SourceStore
	Client  *http.Client
	Logger  *logger.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time

	// MaxFeedBytes rejects larger feeds rather than importing a truncated one.
	MaxFeedBytes int64
}

func NewImporter(store SourceStore, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *Importer {
	return &Importer{
		Store:   store,
		Client:  &http.Client{Timeout: timeout},
		Logger:  log,
		Metrics: m,
		Now:     time.Now,

		MaxFeedBytes: maxFeedBytes,
	}
}

// ImportAll refreshes every enabled source. One failing feed does not stop the
// others; their errors are joined.
func (i *Importer) ImportAll(ctx context.Context) error {
	sources, err := i.Store.ListAllSources(ctx)
	if err != nil {
		return fmt.Errorf("list calendar sources: %w", err)
	}

	var errs []error
	attempted, events := 0, 0
	for _, src := range sources {
		if !src.Enabled {
			continue
		}
		attempted++
		n, err := i.ImportSource(ctx, src)
		if err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", src.Name, err))
			continue
		}
		events += n
	}
	i.Logger.Info("IMPORT", fmt.Sprintf("Import finished: %d/%d sources ok, %d events", attempted-len(errs), attempted, events))
	return errors.Join(errs...)
}

func (i *Importer) ImportSource(ctx context.Context, src models.CalendarSource) (n int, err error) {
	started := time.Now()
	defer func() { i.Metrics.Import(src.Name, time.Since(started), err) }()

	body, err := i.fetch(ctx, src.URL)
	if err != nil {
		i.Logger.Error("IMPORT", fmt.Sprintf("[%s] fetch failed: %v", src.Name, err))
		return 0, err
	}

	events, skipped, err := Parse(body)
	if err != nil {
		i.Logger.Error("IMPORT", fmt.Sprintf("[%s] parse failed: %v", src.Name, err))
		return 0, err
	}
	for _, s := range skipped {
		i.Logger.Warn("IMPORT", fmt.Sprintf("[%s] skipped event: %v", src.Name, s))
	}

	n, err = i.Store.ReplaceSourceEvents(ctx, src.ID, events, i.Now())
	if err != nil {
		return 0, fmt.Errorf("store events: %w", err)
	}
	i.Logger.LogImport(src.Name, fmt.Sprintf("imported %d events", n))
	return n, nil
}

func (i *Importer) fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("source URL is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := i.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	limit := i.MaxFeedBytes
	if limit <= 0 {
		limit = maxFeedBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFeedTooLarge, limit)
	}
	return body, nil
}
