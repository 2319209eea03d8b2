package db

import (
	"context"
	"fmt"

	"ms-schedule/internal/models"

	"github.com/uptrace/bun"
)

// GetFavourites → both favourite sets of a user; empty sets for unknown users
func (d *DB) GetFavourites(ctx context.Context, userID string) (models.Favourites, error) {
	proposals, err := proposalFavourites(ctx, d.Bun, userID)
	if err != nil {
		return models.Favourites{}, err
	}
	events, err := eventFavourites(ctx, d.Bun, userID)
	if err != nil {
		return models.Favourites{}, err
	}
	return models.Favourites{Proposals: proposals, Events: events}, nil
}

// ToggleProposalFavourite flips membership of proposalID in the user's set and
// reports whether it is now a favourite.
func (d *DB) ToggleProposalFavourite(ctx context.Context, userID string, proposalID int64) (bool, error) {
	var added bool
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		favs, err := proposalFavourites(ctx, tx, userID)
		if err != nil {
			return err
		}
		if favs.Remove(proposalID) {
			added = false
			_, err = tx.NewDelete().
				Model((*models.FavouriteProposal)(nil)).
				Where("user_id = ?", userID).
				Where("proposal_id = ?", proposalID).
				Exec(ctx)
			return err
		}
		added = favs.Add(proposalID)
		return insertFavourite(ctx, tx, &models.FavouriteProposal{UserID: userID, ProposalID: proposalID})
	})
	if err != nil {
		return false, fmt.Errorf("toggle proposal favourite %d: %w", proposalID, err)
	}
	return added, nil
}

// ToggleEventFavourite is ToggleProposalFavourite for external calendar events.
func (d *DB) ToggleEventFavourite(ctx context.Context, userID string, eventID int64) (bool, error) {
	var added bool
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		favs, err := eventFavourites(ctx, tx, userID)
		if err != nil {
			return err
		}
		if favs.Remove(eventID) {
			added = false
			_, err = tx.NewDelete().
				Model((*models.FavouriteCalendarEvent)(nil)).
				Where("user_id = ?", userID).
				Where("event_id = ?", eventID).
				Exec(ctx)
			return err
		}
		added = favs.Add(eventID)
		return insertFavourite(ctx, tx, &models.FavouriteCalendarEvent{UserID: userID, EventID: eventID})
	})
	if err != nil {
		return false, fmt.Errorf("toggle event favourite %d: %w", eventID, err)
	}
	return added, nil
}

// ListFavouriteProposals → the user's favourite proposals in id order
func (d *DB) ListFavouriteProposals(ctx context.Context, userID string) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := d.Bun.NewSelect().
		Model(&proposals).
		Relation("User").
		Relation("Venue").
		Join("JOIN favourite_proposals AS fp ON fp.proposal_id = proposal.id").
		Where("fp.user_id = ?", userID).
		OrderExpr("?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list favourite proposals: %w", err)
	}
	return proposals, nil
}

// ListFavouriteEvents → the user's favourite external events in id order
func (d *DB) ListFavouriteEvents(ctx context.Context, userID string) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	err := d.Bun.NewSelect().
		Model(&events).
		Relation("Source").
		Join("JOIN favourite_calendar_events AS fe ON fe.event_id = calendar_event.id").
		Where("fe.user_id = ?", userID).
		OrderExpr("?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list favourite events: %w", err)
	}
	return events, nil
}

// insertFavourite tolerates a row committed by a concurrent toggle between the
// membership read and this insert.
func insertFavourite(ctx context.Context, q bun.IDB, fav interface{}) error {
	_, err := q.NewInsert().
		Model(fav).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	return err
}

func proposalFavourites(ctx context.Context, q bun.IDB, userID string) (models.IDSet, error) {
	var ids []int64
	err := q.NewSelect().
		Model((*models.FavouriteProposal)(nil)).
		Column("proposal_id").
		Where("user_id = ?", userID).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("load proposal favourites: %w", err)
	}
	return models.NewIDSet(ids...), nil
}

func eventFavourites(ctx context.Context, q bun.IDB, userID string) (models.IDSet, error) {
	var ids []int64
	err := q.NewSelect().
		Model((*models.FavouriteCalendarEvent)(nil)).
		Column("event_id").
		Where("user_id = ?", userID).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("load event favourites: %w", err)
	}
	return models.NewIDSet(ids...), nil
}
