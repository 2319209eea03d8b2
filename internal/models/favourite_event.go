package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	FavouriteAdded   = "added"
	FavouriteRemoved = "removed"

	TargetProposal = "proposal"
	TargetExternal = "external"
)

// FavouriteToggledEventDto is published to Kafka whenever a favourite changes.
type FavouriteToggledEventDto struct {
	EventID    uuid.UUID `json:"event_id"`
	UserID     string    `json:"user_id"`
	TargetType string    `json:"target_type"`
	TargetID   int64     `json:"target_id"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewFavouriteToggledEventDto(userID, targetType string, targetID int64, added bool) FavouriteToggledEventDto {
	action := FavouriteRemoved
	if added {
		action = FavouriteAdded
	}
	return FavouriteToggledEventDto{
		EventID:    uuid.New(),
		UserID:     userID,
		TargetType: targetType,
		TargetID:   targetID,
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}
}
