// Package managers persists participant accounts and lobby state.
package managers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/nbbluestudios/crickbid/internal/models"
)

// ErrNotFound is returned when no manager matches the lookup.
var ErrNotFound = errors.New("manager not found")

type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Manager, error) {
	m := new(models.Manager)
	err := r.db.NewSelect().Model(m).Where("m.manager_id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get manager %d: %w", id, err)
	}
	return m, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Manager, error) {
	m := new(models.Manager)
	err := r.db.NewSelect().Model(m).Where("m.email = ?", email).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get manager by email: %w", err)
	}
	return m, nil
}

// List returns every manager ordered by team name, for the lobby and
// admin views.
func (r *Repository) List(ctx context.Context) ([]models.Manager, error) {
	var ms []models.Manager
	if err := r.db.NewSelect().Model(&ms).Order("m.team_name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}
	return ms, nil
}

// SetReady flips the lobby readiness flag.
func (r *Repository) SetReady(ctx context.Context, id int64, ready bool) error {
	res, err := r.db.NewUpdate().
		Model((*models.Manager)(nil)).
		Set("is_ready = ?", ready).
		Where("manager_id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set ready: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetAll restores every manager to a fresh budget and clears
// readiness. Runs inside the auction-creation transaction.
func ResetAll(ctx context.Context, tx bun.IDB, startingBudget int64) error {
	_, err := tx.NewUpdate().
		Model((*models.Manager)(nil)).
		Set("starting_budget = ?", startingBudget).
		Set("current_budget = ?", startingBudget).
		Set("is_ready = FALSE").
		Where("TRUE").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("reset manager budgets: %w", err)
	}
	return nil
}
