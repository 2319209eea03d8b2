package models

import (
	"sort"

	"github.com/uptrace/bun"
)

type FavouriteProposal struct {
	bun.BaseModel `bun:"table:favourite_proposals"`

	UserID     string `bun:"user_id,pk"`
	ProposalID int64  `bun:"proposal_id,pk"`
}

type FavouriteCalendarEvent struct {
	bun.BaseModel `bun:"table:favourite_calendar_events"`

	UserID  string `bun:"user_id,pk"`
	EventID int64  `bun:"event_id,pk"`
}

// IDSet is a set of row ids. The zero value is a usable empty set for reads.
type IDSet map[int64]struct{}

func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Add reports false if id was already present.
func (s IDSet) Add(id int64) bool {
	if s.Has(id) {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Remove reports false if id was not present.
func (s IDSet) Remove(id int64) bool {
	if !s.Has(id) {
		return false
	}
	delete(s, id)
	return true
}

func (s IDSet) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Favourites holds the two independent favourite collections of a user.
type Favourites struct {
	Proposals IDSet
	Events    IDSet
}

func NewFavourites() Favourites {
	return Favourites{Proposals: NewIDSet(), Events: NewIDSet()}
}
