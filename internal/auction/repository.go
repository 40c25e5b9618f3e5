package auction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/nbbluestudios/crickbid/internal/models"
	"github.com/nbbluestudios/crickbid/internal/outbox"
)

// Repository persists auction rows and the tables settled against them.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the handle for services that open their own transactions.
func (r *Repository) DB() *bun.DB {
	return r.db
}

// RunSerializable executes fn inside a SERIALIZABLE transaction,
// translating serialization failures into ErrLockContended.
func (r *Repository) RunSerializable(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	err := r.db.RunInTx(ctx, opts, fn)
	if err != nil && isSerializationFailure(err) {
		return ErrLockContended
	}
	return err
}

// isSerializationFailure matches SQLSTATE 40001 (serialization_failure)
// and 40P01 (deadlock_detected) anywhere in the chain.
func isSerializationFailure(err error) bool {
	type sqlState interface{ SQLState() string }
	for e := err; e != nil; e = errors.Unwrap(e) {
		if s, ok := e.(sqlState); ok {
			if code := s.SQLState(); code == "40001" || code == "40P01" {
				return true
			}
		}
	}
	return false
}

func (r *Repository) Get(ctx context.Context, id int64) (*models.Auction, error) {
	a := new(models.Auction)
	err := r.db.NewSelect().Model(a).Where("a.auction_id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get auction %d: %w", id, err)
	}
	return a, nil
}

// GetLive returns the single auction in a live status, if any.
func (r *Repository) GetLive(ctx context.Context) (*models.Auction, error) {
	a := new(models.Auction)
	err := r.db.NewSelect().Model(a).
		Where("a.status IN (?)", bun.In([]models.AuctionStatus{
			models.AuctionStatusActive, models.AuctionStatusRound2,
		})).
		Order("a.created_at DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoLiveAuction
	}
	if err != nil {
		return nil, fmt.Errorf("get live auction: %w", err)
	}
	return a, nil
}

// GetForUpdate locks the auction row within tx. Every state transition
// goes through this lock.
func GetForUpdate(ctx context.Context, tx bun.IDB, id int64) (*models.Auction, error) {
	a := new(models.Auction)
	err := tx.NewSelect().Model(a).
		Where("a.auction_id = ?", id).
		For("UPDATE").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock auction %d: %w", id, err)
	}
	return a, nil
}

// List returns auctions newest first, for the history view.
func (r *Repository) List(ctx context.Context) ([]models.Auction, error) {
	var as []models.Auction
	if err := r.db.NewSelect().Model(&as).Order("a.created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	return as, nil
}

// NextDeadline returns the earliest pending deadline across live,
// unpaused auctions. sql.ErrNoRows means nothing is scheduled.
func (r *Repository) NextDeadline(ctx context.Context) (int64, time.Time, error) {
	var row struct {
		AuctionID int64     `bun:"auction_id"`
		Deadline  time.Time `bun:"next_deadline_at"`
	}
	err := r.db.NewSelect().
		Model((*models.Auction)(nil)).
		Column("a.auction_id", "a.next_deadline_at").
		Where("a.next_deadline_at IS NOT NULL").
		Where("a.is_paused = FALSE").
		Where("a.status IN (?)", bun.In([]models.AuctionStatus{
			models.AuctionStatusActive, models.AuctionStatusRound2,
		})).
		Order("a.next_deadline_at ASC").
		Limit(1).
		Scan(ctx, &row)
	if err != nil {
		return 0, time.Time{}, err
	}
	return row.AuctionID, row.Deadline, nil
}

// RosterCount returns how many players the manager holds in the auction.
func RosterCount(ctx context.Context, tx bun.IDB, auctionID, managerID int64) (int, error) {
	n, err := tx.NewSelect().
		Model((*models.TeamPlayer)(nil)).
		Where("auction_id = ?", auctionID).
		Where("manager_id = ?", managerID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count roster: %w", err)
	}
	return n, nil
}

// RoleCounts returns the manager's roster broken down by role.
func RoleCounts(ctx context.Context, tx bun.IDB, auctionID, managerID int64) (map[models.PlayerRole]int, error) {
	var rows []struct {
		Role  models.PlayerRole `bun:"role"`
		Count int               `bun:"count"`
	}
	err := tx.NewSelect().
		Model((*models.TeamPlayer)(nil)).
		ColumnExpr("p.role AS role").
		ColumnExpr("COUNT(*) AS count").
		Join("JOIN players AS p ON p.player_id = tp.player_id").
		Where("tp.auction_id = ?", auctionID).
		Where("tp.manager_id = ?", managerID).
		Group("p.role").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("roster role counts: %w", err)
	}
	counts := make(map[models.PlayerRole]int, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

// Roster returns the manager's purchases with player details.
func (r *Repository) Roster(ctx context.Context, auctionID, managerID int64) ([]models.TeamPlayer, error) {
	var tps []models.TeamPlayer
	err := r.db.NewSelect().Model(&tps).
		Relation("Player").
		Where("tp.auction_id = ?", auctionID).
		Where("tp.manager_id = ?", managerID).
		Order("tp.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get roster: %w", err)
	}
	return tps, nil
}

// CascadeDelete removes the auction and every dependent row. Children
// first so the foreign keys never dangle.
func (r *Repository) CascadeDelete(ctx context.Context, auctionID int64) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, m := range []any{
			(*models.Bid)(nil),
			(*models.TeamPlayer)(nil),
			(*models.UnsoldPlayer)(nil),
			(*models.Round2Selection)(nil),
		} {
			if _, err := tx.NewDelete().Model(m).Where("auction_id = ?", auctionID).Exec(ctx); err != nil {
				return fmt.Errorf("cascade delete auction %d: %w", auctionID, err)
			}
		}
		if err := outbox.DeleteForAuction(ctx, tx, auctionID); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*models.Auction)(nil)).
			Where("auction_id = ?", auctionID).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete auction %d: %w", auctionID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}
