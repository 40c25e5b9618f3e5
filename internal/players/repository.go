// Package players persists the raw and curated player pools and answers
// the availability queries the auction engine rotates over.
package players

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/nbbluestudios/crickbid/internal/models"
)

// ErrNotFound is returned when no player matches the lookup.
var ErrNotFound = errors.New("player not found")

type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Player, error) {
	p := new(models.Player)
	err := r.db.NewSelect().Model(p).Where("p.player_id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player %d: %w", id, err)
	}
	return p, nil
}

// availableFilter excludes players already sold or marked unsold in the
// given auction.
func availableFilter(q *bun.SelectQuery, auctionID int64) *bun.SelectQuery {
	return q.
		Where("p.player_id NOT IN (SELECT player_id FROM team_players WHERE auction_id = ?)", auctionID).
		Where("p.player_id NOT IN (SELECT player_id FROM unsold_players WHERE auction_id = ?)", auctionID)
}

// AvailableInCategory returns undecided players in a (class, role)
// category for round-one rotation. Takes bun.IDB so the rotation can
// read the pool inside its own transaction.
func AvailableInCategory(ctx context.Context, db bun.IDB, auctionID int64, class models.ClassBand, role models.PlayerRole) ([]models.Player, error) {
	var ps []models.Player
	q := db.NewSelect().Model(&ps).
		Where("p.class_band = ?", class).
		Where("p.role = ?", role)
	if err := availableFilter(q, auctionID).Scan(ctx); err != nil {
		return nil, fmt.Errorf("available players in category: %w", err)
	}
	return ps, nil
}

// CheapestAvailableByRole returns the lowest base prices among
// undecided players of a role, cheapest first, for the budget guard.
func CheapestAvailableByRole(ctx context.Context, db bun.IDB, auctionID int64, role models.PlayerRole, limit int) ([]int64, error) {
	var prices []int64
	q := db.NewSelect().
		Model((*models.Player)(nil)).
		Column("p.base_price").
		Where("p.role = ?", role).
		Order("p.base_price ASC").
		Limit(limit)
	if err := availableFilter(q, auctionID).Scan(ctx, &prices); err != nil {
		return nil, fmt.Errorf("cheapest available by role: %w", err)
	}
	return prices, nil
}

// Round2Pool returns selected-but-unsold players for round-two rotation.
func Round2Pool(ctx context.Context, db bun.IDB, auctionID int64) ([]models.Player, error) {
	var ps []models.Player
	err := db.NewSelect().Model(&ps).
		Where("p.player_id IN (SELECT player_id FROM round2_selections WHERE auction_id = ?)", auctionID).
		Where("p.player_id NOT IN (SELECT player_id FROM team_players WHERE auction_id = ?)", auctionID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("round2 pool: %w", err)
	}
	return ps, nil
}

// UnsoldAvailable returns unsold players not yet claimed by a round-two
// selection, for the selection screen.
func (r *Repository) UnsoldAvailable(ctx context.Context, auctionID int64) ([]models.Player, error) {
	var ps []models.Player
	err := r.db.NewSelect().Model(&ps).
		Where("p.player_id IN (SELECT player_id FROM unsold_players WHERE auction_id = ?)", auctionID).
		Where("p.player_id NOT IN (SELECT player_id FROM team_players WHERE auction_id = ?)", auctionID).
		Order("p.class_band ASC", "p.player_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("unsold players: %w", err)
	}
	return ps, nil
}

// ReplaceAll atomically swaps both player tables with freshly imported
// rows. Curated rows are assumed pre-filtered by the importer.
func (r *Repository) ReplaceAll(ctx context.Context, raw []models.RawPlayer, curated []models.Player) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.Player)(nil)).Where("TRUE").Exec(ctx); err != nil {
			return fmt.Errorf("clear players: %w", err)
		}
		if _, err := tx.NewDelete().Model((*models.RawPlayer)(nil)).Where("TRUE").Exec(ctx); err != nil {
			return fmt.Errorf("clear players_raw: %w", err)
		}
		if len(raw) > 0 {
			if _, err := tx.NewInsert().Model(&raw).Exec(ctx); err != nil {
				return fmt.Errorf("insert raw players: %w", err)
			}
		}
		if len(curated) > 0 {
			if _, err := tx.NewInsert().Model(&curated).Exec(ctx); err != nil {
				return fmt.Errorf("insert curated players: %w", err)
			}
		}
		return nil
	})
}
