package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ms-schedule/internal/models"

	"github.com/uptrace/bun"
)

var ErrNotFound = errors.New("not found")

type DB struct {
	Bun *bun.DB
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// ---------------- PROPOSALS ----------------

// ListScheduledProposals → displayable proposals with time, venue and duration all set
func (d *DB) ListScheduledProposals(ctx context.Context) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := d.Bun.NewSelect().
		Model(&proposals).
		Relation("User").
		Relation("Venue").
		Where("?TableAlias.state IN (?)", bun.In(models.ScheduledStates)).
		Where("?TableAlias.scheduled_time IS NOT NULL").
		Where("?TableAlias.scheduled_venue IS NOT NULL").
		Where("?TableAlias.scheduled_duration IS NOT NULL").
		OrderExpr("?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scheduled proposals: %w", err)
	}
	return proposals, nil
}

// ListLineUpProposals → displayable talks and workshops that have a duration
func (d *DB) ListLineUpProposals(ctx context.Context) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := d.Bun.NewSelect().
		Model(&proposals).
		Relation("User").
		Relation("Venue").
		Where("?TableAlias.scheduled_duration IS NOT NULL").
		Where("?TableAlias.state IN (?)", bun.In(models.ScheduledStates)).
		Where("?TableAlias.type IN (?)", bun.In(models.LineUpTypes)).
		OrderExpr("?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list line-up proposals: %w", err)
	}
	return proposals, nil
}

// GetProposal → one proposal by id, regardless of state
func (d *DB) GetProposal(ctx context.Context, id int64) (*models.Proposal, error) {
	var proposal models.Proposal
	err := d.Bun.NewSelect().
		Model(&proposal).
		Relation("User").
		Relation("Venue").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &proposal, nil
}

func (d *DB) CreateProposal(ctx context.Context, proposal *models.Proposal) error {
	_, err := d.Bun.NewInsert().Model(proposal).Exec(ctx)
	return err
}

// ---------------- VENUES ----------------

// ListVenues → every venue in id order
func (d *DB) ListVenues(ctx context.Context) ([]models.Venue, error) {
	var venues []models.Venue
	err := d.Bun.NewSelect().
		Model(&venues).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	return venues, nil
}

func (d *DB) CreateVenue(ctx context.Context, venue *models.Venue) error {
	_, err := d.Bun.NewInsert().Model(venue).Exec(ctx)
	return err
}

// ---------------- USERS ----------------

func (d *DB) CreateUser(ctx context.Context, user *models.User) error {
	_, err := d.Bun.NewInsert().Model(user).Exec(ctx)
	return err
}
