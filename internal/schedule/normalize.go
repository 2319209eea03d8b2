package schedule

import (
	"fmt"
	"strconv"
	"time"

	"ms-schedule/internal/models"
)

// Record is one source row awaiting normalization.
type Record interface {
	Source() SourceTag
	Normalize(n *Normalizer, favs models.Favourites) ScheduledItem
}

type ProposalRecord struct {
	Proposal models.Proposal
}

func (r ProposalRecord) Source() SourceTag { return SourceDatabase }

func (r ProposalRecord) Normalize(n *Normalizer, favs models.Favourites) ScheduledItem {
	return n.Proposal(r.Proposal, favs.Proposals)
}

type ExternalRecord struct {
	Calendar models.CalendarSource
	Event    models.CalendarEvent
}

func (r ExternalRecord) Source() SourceTag { return SourceExternal }

func (r ExternalRecord) Normalize(n *Normalizer, favs models.Favourites) ScheduledItem {
	return n.External(r.Calendar, r.Event, favs.Events)
}

// Normalizer turns proposals and calendar events into ScheduledItems.
type Normalizer struct {
	Location   *time.Location
	LinkPrefix string
}

func NewNormalizer(loc *time.Location, year int) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{Location: loc, LinkPrefix: fmt.Sprintf("/line-up/%d", year)}
}

func (n *Normalizer) Proposal(p models.Proposal, favourites models.IDSet) ScheduledItem {
	item := ScheduledItem{
		ID:          strconv.FormatInt(p.ID, 10),
		RowID:       p.ID,
		Title:       p.Title,
		Speaker:     p.SpeakerName(),
		Description: p.Description,
		Type:        p.Type,
		MayRecord:   p.MayRecord,
		IsFavourite: favourites.Has(p.ID),
		Source:      SourceDatabase,
		Slug:        p.Slug(),
	}
	item.Link = n.ProposalLink(p.ID, item.Slug)

	if p.ScheduledTime != nil {
		item.Start = n.Localize(*p.ScheduledTime)
		item.End = n.Localize(p.EndDate())
	}
	if p.Venue != nil {
		item.Venue = p.Venue.Name
	}
	if p.Type == models.TypeWorkshop {
		cost := p.Cost
		item.Cost = &cost
	}
	if item.End.Before(item.Start) {
		item.End = item.Start
	}
	return item
}

func (n *Normalizer) External(src models.CalendarSource, e models.CalendarEvent, favourites models.IDSet) ScheduledItem {
	item := ScheduledItem{
		ID:          e.UID,
		RowID:       e.ID,
		Start:       e.StartDT,
		End:         e.EndDT,
		Venue:       e.Venue(&src),
		Title:       e.Summary,
		Speaker:     "",
		Description: e.Description,
		Type:        models.TypeTalk,
		MayRecord:   false,
		IsFavourite: favourites.Has(e.ID),
		Source:      SourceExternal,
		Slug:        e.Slug(),
	}
	item.Link = n.ExternalLink(e.ID, item.Slug)
	if item.End.Before(item.Start) {
		item.End = item.Start
	}
	return item
}

func (n *Normalizer) ProposalLink(id int64, slug string) string {
	return n.link("", id, slug)
}

func (n *Normalizer) ExternalLink(id int64, slug string) string {
	return n.link("/external", id, slug)
}

func (n *Normalizer) link(kind string, id int64, slug string) string {
	if slug == "" {
		return fmt.Sprintf("%s%s/%d", n.LinkPrefix, kind, id)
	}
	return fmt.Sprintf("%s%s/%d-%s", n.LinkPrefix, kind, id, slug)
}

// Localize reads a naive stored timestamp as wall-clock time in the conference timezone.
func (n *Normalizer) Localize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), n.Location)
}
