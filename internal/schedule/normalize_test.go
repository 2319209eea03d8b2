package schedule

import (
	"testing"
	"time"

	"ms-schedule/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeProposal(t *testing.T) {
	n := NewNormalizer(london, 2016)
	start := time.Date(2016, 8, 5, 14, 0, 0, 0, time.UTC)
	dur := 60
	venueID := int64(3)
	p := models.Proposal{
		ID:                42,
		Type:              models.TypeWorkshop,
		Title:             "Correct Slug",
		Description:       "Bring a laptop",
		MayRecord:         true,
		Cost:              "£5",
		ScheduledTime:     &start,
		ScheduledDuration: &dur,
		ScheduledVenue:    &venueID,
		User:              &models.User{Name: "Submitter"},
		Venue:             &models.Venue{ID: 3, Name: "Workshop 1"},
	}

	item := ProposalRecord{Proposal: p}.Normalize(n, models.Favourites{Proposals: models.NewIDSet(42)})

	assert.Equal(t, "42", item.ID)
	assert.Equal(t, SourceDatabase, item.Source)
	assert.Equal(t, time.Date(2016, 8, 5, 14, 0, 0, 0, london), item.Start)
	assert.Equal(t, "Europe/London", item.Start.Location().String())
	assert.Equal(t, 60*time.Minute, item.Duration())
	assert.Equal(t, "Workshop 1", item.Venue)
	assert.Equal(t, "Submitter", item.Speaker)
	assert.True(t, item.IsFavourite)
	assert.True(t, item.MayRecord)
	assert.Equal(t, "/line-up/2016/42-correct-slug", item.Link)
	require.NotNil(t, item.Cost)
	assert.Equal(t, "£5", *item.Cost)
}

func TestNormalizeProposalCostOnlyForWorkshops(t *testing.T) {
	n := NewNormalizer(london, 2016)
	item := n.Proposal(models.Proposal{ID: 1, Type: models.TypeTalk, Cost: "£5", PublishedNames: "Display"}, nil)

	assert.Nil(t, item.Cost)
	assert.Equal(t, "Display", item.Speaker)
	assert.False(t, item.IsFavourite)
}

func TestNormalizeExternal(t *testing.T) {
	n := NewNormalizer(london, 2016)
	bst := time.FixedZone("BST", 3600)
	e := models.CalendarEvent{
		ID:       7,
		UID:      "abc@feed",
		Summary:  "Night Market",
		Location: "Bar",
		StartDT:  time.Date(2016, 8, 6, 20, 0, 0, 0, bst),
		EndDT:    time.Date(2016, 8, 6, 22, 0, 0, 0, bst),
	}

	item := ExternalRecord{Calendar: models.CalendarSource{}, Event: e}.
		Normalize(n, models.Favourites{Events: models.NewIDSet(7)})

	assert.Equal(t, "abc@feed", item.ID)
	assert.Equal(t, int64(7), item.RowID)
	assert.Equal(t, SourceExternal, item.Source)
	assert.Equal(t, e.StartDT, item.Start)
	assert.Equal(t, "Bar", item.Venue)
	assert.Equal(t, "", item.Speaker)
	assert.False(t, item.MayRecord)
	assert.True(t, item.IsFavourite)
	assert.Equal(t, models.TypeTalk, item.Type)
	assert.Equal(t, "/line-up/2016/external/7-night-market", item.Link)

	overridden := n.External(models.CalendarSource{MainVenue: "Hall 1"}, e, nil)
	assert.Equal(t, "Hall 1", overridden.Venue)
	assert.False(t, overridden.IsFavourite)
}

func TestNormalizeKeepsStartBeforeEnd(t *testing.T) {
	n := NewNormalizer(london, 2016)
	e := models.CalendarEvent{
		UID:     "x",
		StartDT: time.Date(2016, 8, 6, 22, 0, 0, 0, time.UTC),
		EndDT:   time.Date(2016, 8, 6, 20, 0, 0, 0, time.UTC),
	}

	item := n.External(models.CalendarSource{}, e, nil)
	assert.False(t, item.End.Before(item.Start))
	assert.Equal(t, models.UnknownVenue, item.Venue)
}
