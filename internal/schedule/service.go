package schedule

import (
	"context"
	"errors"
	"fmt"

	"ms-schedule/internal/logger"
	"ms-schedule/internal/models"
	"ms-schedule/internal/schedule/db"
)

var ErrNotFound = errors.New("schedule entry not found")

type ScheduleDBLayer interface {
	ListScheduledProposals(ctx context.Context) ([]models.Proposal, error)
	ListLineUpProposals(ctx context.Context) ([]models.Proposal, error)
	GetProposal(ctx context.Context, id int64) (*models.Proposal, error)
	ListVenues(ctx context.Context) ([]models.Venue, error)
	ListEnabledSources(ctx context.Context) ([]models.CalendarSource, error)
	GetCalendarEvent(ctx context.Context, id int64) (*models.CalendarEvent, error)
	GetFavourites(ctx context.Context, userID string) (models.Favourites, error)
	ToggleProposalFavourite(ctx context.Context, userID string, proposalID int64) (bool, error)
	ToggleEventFavourite(ctx context.Context, userID string, eventID int64) (bool, error)
	ListFavouriteProposals(ctx context.Context, userID string) ([]models.Proposal, error)
	ListFavouriteEvents(ctx context.Context, userID string) ([]models.CalendarEvent, error)
}

// Publisher receives an event for every favourite change.
type Publisher interface {
	PublishFavouriteToggled(ctx context.Context, event models.FavouriteToggledEventDto) error
}

// Viewer is the identity a schedule is rendered for. The zero value is anonymous.
type Viewer struct {
	UserID     string
	Favourites models.Favourites
}

func (v Viewer) IsAnonymous() bool {
	return v.UserID == ""
}

type ScheduleService struct {
	DB         ScheduleDBLayer
	Normalizer *Normalizer
	Publisher  Publisher
	Logger     *logger.Logger
}

func NewScheduleService(store ScheduleDBLayer, normalizer *Normalizer, publisher Publisher, log *logger.Logger) *ScheduleService {
	return &ScheduleService{
		DB:         store,
		Normalizer: normalizer,
		Publisher:  publisher,
		Logger:     log,
	}
}

// LoadViewer fetches the favourite sets for userID. An empty userID yields an
// anonymous viewer without touching the store.
func (s *ScheduleService) LoadViewer(ctx context.Context, userID string) (Viewer, error) {
	if userID == "" {
		return Viewer{Favourites: models.NewFavourites()}, nil
	}
	favs, err := s.DB.GetFavourites(ctx, userID)
	if err != nil {
		return Viewer{}, fmt.Errorf("load favourites for %s: %w", userID, err)
	}
	return Viewer{UserID: userID, Favourites: favs}, nil
}

// Records returns every schedulable source row: proposals in query order, then
// external events grouped by source.
func (s *ScheduleService) Records(ctx context.Context) ([]Record, error) {
	proposals, err := s.DB.ListScheduledProposals(ctx)
	if err != nil {
		return nil, err
	}
	sources, err := s.DB.ListEnabledSources(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(proposals))
	for _, p := range proposals {
		records = append(records, ProposalRecord{Proposal: p})
	}
	for _, src := range sources {
		for _, e := range src.Events {
			records = append(records, ExternalRecord{Calendar: src, Event: *e})
		}
	}
	return records, nil
}

// GetScheduledItems merges both sources for viewer and applies filters.
func (s *ScheduleService) GetScheduledItems(ctx context.Context, viewer Viewer, filters Filters) ([]ScheduledItem, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]ScheduledItem, 0, len(records))
	for _, r := range records {
		items = append(items, r.Normalize(s.Normalizer, viewer.Favourites))
	}
	return filters.Apply(items), nil
}

type LineUp struct {
	Proposals []models.Proposal
	Externals []models.CalendarEvent
}

func (s *ScheduleService) GetLineUp(ctx context.Context) (*LineUp, error) {
	proposals, err := s.DB.ListLineUpProposals(ctx)
	if err != nil {
		return nil, err
	}
	sources, err := s.DB.ListEnabledSources(ctx)
	if err != nil {
		return nil, err
	}

	lineUp := &LineUp{Proposals: proposals}
	for i := range sources {
		for _, e := range sources[i].Events {
			ev := *e
			ev.Source = &sources[i]
			lineUp.Externals = append(lineUp.Externals, ev)
		}
	}
	return lineUp, nil
}

// GetProposal hides proposals that are missing or not in a public state.
func (s *ScheduleService) GetProposal(ctx context.Context, id int64) (*models.Proposal, error) {
	p, err := s.DB.GetProposal(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !p.IsDisplayable() {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *ScheduleService) GetExternalEvent(ctx context.Context, id int64) (*models.CalendarEvent, error) {
	e, err := s.DB.GetCalendarEvent(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ToggleProposalFavourite reports whether the proposal is a favourite afterwards.
func (s *ScheduleService) ToggleProposalFavourite(ctx context.Context, userID string, p *models.Proposal) (bool, error) {
	added, err := s.DB.ToggleProposalFavourite(ctx, userID, p.ID)
	if err != nil {
		return false, err
	}
	s.announce(ctx, models.NewFavouriteToggledEventDto(userID, models.TargetProposal, p.ID, added))
	return added, nil
}

func (s *ScheduleService) ToggleEventFavourite(ctx context.Context, userID string, e *models.CalendarEvent) (bool, error) {
	added, err := s.DB.ToggleEventFavourite(ctx, userID, e.ID)
	if err != nil {
		return false, err
	}
	s.announce(ctx, models.NewFavouriteToggledEventDto(userID, models.TargetExternal, e.ID, added))
	return added, nil
}

// announce never fails the toggle; the favourite is already committed.
func (s *ScheduleService) announce(ctx context.Context, event models.FavouriteToggledEventDto) {
	s.Logger.LogFavourite(event.Action, event.UserID, fmt.Sprintf("%s %d", event.TargetType, event.TargetID))
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.PublishFavouriteToggled(ctx, event); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish favourite event %s: %v", event.EventID, err))
	}
}

type Favourites struct {
	Proposals []models.Proposal
	Externals []models.CalendarEvent
}

func (s *ScheduleService) GetFavourites(ctx context.Context, userID string) (*Favourites, error) {
	proposals, err := s.DB.ListFavouriteProposals(ctx, userID)
	if err != nil {
		return nil, err
	}
	events, err := s.DB.ListFavouriteEvents(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Favourites{Proposals: proposals, Externals: events}, nil
}
