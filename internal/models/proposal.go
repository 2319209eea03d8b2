package models

import (
	"time"

	"github.com/gosimple/slug"
	"github.com/uptrace/bun"
)

const (
	StateAccepted = "accepted"
	StateFinished = "finished"

	TypeTalk     = "talk"
	TypeWorkshop = "workshop"
)

// ScheduledStates lists the proposal states that may appear publicly.
var ScheduledStates = []string{StateAccepted, StateFinished}

// LineUpTypes lists the proposal types shown on the line-up page.
var LineUpTypes = []string{TypeTalk, TypeWorkshop}

type Proposal struct {
	bun.BaseModel `bun:"table:proposals"`

	ID                int64      `bun:"id,pk,autoincrement"`
	UserID            string     `bun:"user_id,notnull"`
	Type              string     `bun:"type,notnull"`
	State             string     `bun:"state,notnull"`
	Title             string     `bun:"title,notnull"`
	Description       string     `bun:"description"`
	PublishedNames    string     `bun:"published_names,nullzero"`
	MayRecord         bool       `bun:"may_record,notnull"`
	Cost              string     `bun:"cost,nullzero"`
	ScheduledTime     *time.Time `bun:"scheduled_time"`     // naive wall clock, conference timezone
	ScheduledDuration *int       `bun:"scheduled_duration"` // minutes
	ScheduledVenue    *int64     `bun:"scheduled_venue"`

	User  *User  `bun:"rel:belongs-to,join:user_id=id"`
	Venue *Venue `bun:"rel:belongs-to,join:scheduled_venue=id"`
}

// IsDisplayable reports whether the proposal may be shown publicly.
func (p *Proposal) IsDisplayable() bool {
	return p.State == StateAccepted || p.State == StateFinished
}

// IsScheduled reports whether time, venue and duration are all set.
func (p *Proposal) IsScheduled() bool {
	return p.ScheduledTime != nil && p.ScheduledVenue != nil && p.ScheduledDuration != nil
}

// EndDate is the scheduled start plus the scheduled duration.
func (p *Proposal) EndDate() time.Time {
	if p.ScheduledTime == nil {
		return time.Time{}
	}
	end := *p.ScheduledTime
	if p.ScheduledDuration != nil {
		end = end.Add(time.Duration(*p.ScheduledDuration) * time.Minute)
	}
	return end
}

// SpeakerName prefers the published display names over the submitter's name.
func (p *Proposal) SpeakerName() string {
	if p.PublishedNames != "" {
		return p.PublishedNames
	}
	if p.User != nil {
		return p.User.Name
	}
	return ""
}

func (p *Proposal) Slug() string {
	return slug.Make(p.Title)
}
