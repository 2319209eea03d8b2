package db_test

import (
	"context"
	"testing"
	"time"

	"ms-schedule/internal/models"
	"ms-schedule/internal/schedule/db"
	"ms-schedule/internal/schedule/db/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slot = time.Date(2016, 8, 5, 14, 0, 0, 0, time.UTC)

func TestListScheduledProposalsRequiresEveryField(t *testing.T) {
	store := dbtest.Setup(t)
	ctx := context.Background()
	dbtest.User(t, store, "u1", "Ada")
	stage := dbtest.Venue(t, store, "Stage A", 1)

	full := dbtest.Proposal(t, store, models.Proposal{UserID: "u1", Title: "Full"}, stage, slot, 30)

	noTime := dbtest.Proposal(t, store, models.Proposal{UserID: "u1", Title: "No time"}, stage, slot, 30)
	noTime.ScheduledTime = nil
	noVenue := dbtest.Proposal(t, store, models.Proposal{UserID: "u1", Title: "No venue"}, stage, slot, 30)
	noVenue.ScheduledVenue = nil
	noDuration := dbtest.Proposal(t, store, models.Proposal{UserID: "u1", Title: "No duration"}, stage, slot, 30)
	noDuration.ScheduledDuration = nil
	for _, p := range []*models.Proposal{noTime, noVenue, noDuration} {
		_, err := store.Bun.NewUpdate().Model(p).
			Column("scheduled_time", "scheduled_venue", "scheduled_duration").
			WherePK().Exec(ctx)
		require.NoError(t, err)
	}

	dbtest.Proposal(t, store, models.Proposal{UserID: "u1", Title: "Rejected", State: "rejected"}, stage, slot, 30)
	finished := dbtest.Proposal(t, store, models.Proposal{UserID: "u1", Title: "Done", State: models.StateFinished}, stage, slot, 30)

	got, err := store.ListScheduledProposals(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, full.ID, got[0].ID)
	assert.Equal(t, finished.ID, got[1].ID)
	require.NotNil(t, got[0].Venue)
	assert.Equal(t, "Stage A", got[0].Venue.Name)
	require.NotNil(t, got[0].User)
	assert.Equal(t, "Ada", got[0].User.Name)
}

func TestListLineUpProposals(t *testing.T) {
	store := dbtest.Setup(t)
	dbtest.User(t, store, "u1", "Ada")
	stage := dbtest.Venue(t, store, "Stage A", 1)

	talk := dbtest.Proposal(t, store, models.Proposal{UserID: "u1", Title: "Talk"}, stage, slot, 30)
	dbtest.Proposal(t, store, models.Proposal{UserID: "u1", Title: "Music", Type: "performance"}, stage, slot, 30)
	dbtest.Proposal(t, store, models.Proposal{UserID: "u1", Title: "Unscheduled"}, nil, slot, 0)

	got, err := store.ListLineUpProposals(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, talk.ID, got[0].ID)
}

func TestGetProposalNotFound(t *testing.T) {
	store := dbtest.Setup(t)

	_, err := store.GetProposal(context.Background(), 42)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestListEnabledSourcesWithEvents(t *testing.T) {
	store := dbtest.Setup(t)
	on := dbtest.Source(t, store, "village", true, "", 0)
	off := dbtest.Source(t, store, "hidden", false, "", 5)
	dbtest.Event(t, store, on, "a", "First", "Tent", slot, time.Hour)
	dbtest.Event(t, store, on, "b", "Second", "Bar", slot, time.Hour)
	dbtest.Event(t, store, off, "c", "Hidden", "Bar", slot, time.Hour)

	got, err := store.ListEnabledSources(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, on.ID, got[0].ID)
	require.Len(t, got[0].Events, 2)
	assert.Equal(t, "a", got[0].Events[0].UID)
	assert.Equal(t, "b", got[0].Events[1].UID)
}

func TestToggleProposalFavouriteTwiceRestoresState(t *testing.T) {
	store := dbtest.Setup(t)
	ctx := context.Background()
	dbtest.User(t, store, "u1", "Ada")
	p := dbtest.Proposal(t, store, models.Proposal{UserID: "u1", Title: "Talk"}, nil, slot, 0)

	added, err := store.ToggleProposalFavourite(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.True(t, added)

	favs, err := store.GetFavourites(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, favs.Proposals.Has(p.ID))

	added, err = store.ToggleProposalFavourite(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.False(t, added)

	favs, err = store.GetFavourites(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, favs.Proposals.Has(p.ID))
}

func TestInsertFavouriteToleratesConcurrentInsert(t *testing.T) {
	store := dbtest.Setup(t)
	ctx := context.Background()
	dbtest.User(t, store, "u1", "Ada")
	p := dbtest.Proposal(t, store, models.Proposal{UserID: "u1", Title: "Talk"}, nil, slot, 0)
	src := dbtest.Source(t, store, "village", true, "", 0)
	e := dbtest.Event(t, store, src, "e-1", "Party", "Bar", slot, time.Hour)

	added, err := store.ToggleProposalFavourite(ctx, "u1", p.ID)
	require.NoError(t, err)
	require.True(t, added)
	added, err = store.ToggleEventFavourite(ctx, "u1", e.ID)
	require.NoError(t, err)
	require.True(t, added)

	// a second toggle that read "absent" before the first committed
	require.NoError(t, db.InsertFavourite(ctx, store.Bun, &models.FavouriteProposal{UserID: "u1", ProposalID: p.ID}))
	require.NoError(t, db.InsertFavourite(ctx, store.Bun, &models.FavouriteCalendarEvent{UserID: "u1", EventID: e.ID}))

	favs, err := store.GetFavourites(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int64{p.ID}, favs.Proposals.IDs())
	assert.Equal(t, []int64{e.ID}, favs.Events.IDs())
}

func TestFavouriteCollectionsAreIndependent(t *testing.T) {
	store := dbtest.Setup(t)
	ctx := context.Background()
	dbtest.User(t, store, "u1", "Ada")
	p := dbtest.Proposal(t, store, models.Proposal{UserID: "u1", Title: "Talk"}, nil, slot, 0)
	src := dbtest.Source(t, store, "village", true, "", 0)
	e := dbtest.Event(t, store, src, "a", "Party", "Bar", slot, time.Hour)

	_, err := store.ToggleEventFavourite(ctx, "u1", e.ID)
	require.NoError(t, err)

	favs, err := store.GetFavourites(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, favs.Events.Has(e.ID))
	assert.False(t, favs.Proposals.Has(p.ID))

	events, err := store.ListFavouriteEvents(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Party", events[0].Summary)
	require.NotNil(t, events[0].Source)
	assert.Equal(t, "village", events[0].Source.Name)

	proposals, err := store.ListFavouriteProposals(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, proposals)
}

func TestGetFavouritesUnknownUser(t *testing.T) {
	store := dbtest.Setup(t)

	favs, err := store.GetFavourites(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, favs.Proposals)
	assert.Empty(t, favs.Events)
}

func TestReplaceSourceEventsKeepsIDsForKnownUIDs(t *testing.T) {
	store := dbtest.Setup(t)
	ctx := context.Background()
	dbtest.User(t, store, "u1", "Ada")
	src := dbtest.Source(t, store, "village", true, "", 0)
	kept := dbtest.Event(t, store, src, "keep", "Old title", "Tent", slot, time.Hour)
	gone := dbtest.Event(t, store, src, "gone", "Cancelled", "Tent", slot, time.Hour)
	_, err := store.ToggleEventFavourite(ctx, "u1", gone.ID)
	require.NoError(t, err)

	fetched := time.Date(2016, 8, 1, 9, 0, 0, 0, time.UTC)
	n, err := store.ReplaceSourceEvents(ctx, src.ID, []models.CalendarEvent{
		{UID: "keep", Summary: "New title", Location: "Tent", StartDT: slot, EndDT: slot.Add(time.Hour)},
		{UID: "fresh", Summary: "Added", Location: "Bar", StartDT: slot, EndDT: slot.Add(time.Hour)},
	}, fetched)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sources, err := store.ListEnabledSources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	require.Len(t, sources[0].Events, 2)
	assert.Equal(t, kept.ID, sources[0].Events[0].ID)
	assert.Equal(t, "New title", sources[0].Events[0].Summary)
	assert.Equal(t, "fresh", sources[0].Events[1].UID)
	assert.True(t, sources[0].LastFetched.Equal(fetched))

	favs, err := store.GetFavourites(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, favs.Events.Has(gone.ID))

	_, err = store.GetCalendarEvent(ctx, gone.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
}
