package round2

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/nbbluestudios/crickbid/internal/auction"
	"github.com/nbbluestudios/crickbid/internal/models"
	"github.com/nbbluestudios/crickbid/internal/players"
)

// Store is the persistence surface the selection rules run on.
type Store interface {
	GetAuction(ctx context.Context, auctionID int64) (*models.Auction, error)
	AvailablePlayers(ctx context.Context, auctionID int64) ([]models.Player, error)
	ManagerSelections(ctx context.Context, auctionID, managerID int64) ([]models.Round2Selection, error)
	AuctionSelections(ctx context.Context, auctionID int64) ([]models.Round2Selection, error)
	CountSelections(ctx context.Context, auctionID, managerID int64) (int, error)
	IsUnsold(ctx context.Context, auctionID, playerID int64) (bool, error)
	// InsertSelection returns auction.ErrAlreadySelected when another
	// manager already holds the (auction, player) row.
	InsertSelection(ctx context.Context, sel *models.Round2Selection) error
	DeleteSelection(ctx context.Context, auctionID, managerID, playerID int64) (int64, error)
}

type bunStore struct {
	db       *bun.DB
	auctions *auction.Repository
	players  *players.Repository
}

func (s *bunStore) GetAuction(ctx context.Context, auctionID int64) (*models.Auction, error) {
	return s.auctions.Get(ctx, auctionID)
}

func (s *bunStore) AvailablePlayers(ctx context.Context, auctionID int64) ([]models.Player, error) {
	return s.players.UnsoldAvailable(ctx, auctionID)
}

func (s *bunStore) ManagerSelections(ctx context.Context, auctionID, managerID int64) ([]models.Round2Selection, error) {
	var sels []models.Round2Selection
	err := s.db.NewSelect().Model(&sels).
		Relation("Player").
		Where("r2.auction_id = ?", auctionID).
		Where("r2.manager_id = ?", managerID).
		Order("r2.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	return sels, nil
}

func (s *bunStore) AuctionSelections(ctx context.Context, auctionID int64) ([]models.Round2Selection, error) {
	var sels []models.Round2Selection
	err := s.db.NewSelect().Model(&sels).
		Relation("Player").
		Where("r2.auction_id = ?", auctionID).
		Order("r2.manager_id ASC", "r2.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all selections: %w", err)
	}
	return sels, nil
}

func (s *bunStore) CountSelections(ctx context.Context, auctionID, managerID int64) (int, error) {
	count, err := s.db.NewSelect().
		Model((*models.Round2Selection)(nil)).
		Where("auction_id = ?", auctionID).
		Where("manager_id = ?", managerID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count selections: %w", err)
	}
	return count, nil
}

func (s *bunStore) IsUnsold(ctx context.Context, auctionID, playerID int64) (bool, error) {
	unsold, err := s.db.NewSelect().
		Model((*models.UnsoldPlayer)(nil)).
		Where("auction_id = ?", auctionID).
		Where("player_id = ?", playerID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check unsold: %w", err)
	}
	return unsold, nil
}

func (s *bunStore) InsertSelection(ctx context.Context, sel *models.Round2Selection) error {
	if _, err := s.db.NewInsert().Model(sel).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return auction.ErrAlreadySelected
		}
		return fmt.Errorf("insert selection: %w", err)
	}
	return nil
}

func (s *bunStore) DeleteSelection(ctx context.Context, auctionID, managerID, playerID int64) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*models.Round2Selection)(nil)).
		Where("auction_id = ?", auctionID).
		Where("manager_id = ?", managerID).
		Where("player_id = ?", playerID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete selection: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// isUniqueViolation matches SQLSTATE 23505 (unique_violation).
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}
