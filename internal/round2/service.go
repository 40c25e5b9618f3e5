// Package round2 manages manager nominations of unsold players for the
// second bidding round.
package round2

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"github.com/nbbluestudios/crickbid/internal/auction"
	"github.com/nbbluestudios/crickbid/internal/models"
	"github.com/nbbluestudios/crickbid/internal/players"
)

type Service struct {
	store Store
}

func NewService(db *bun.DB, auctions *auction.Repository, playersRepo *players.Repository) *Service {
	return &Service{store: &bunStore{db: db, auctions: auctions, players: playersRepo}}
}

// NewServiceWithStore injects an alternative store, used by tests.
func NewServiceWithStore(store Store) *Service {
	return &Service{store: store}
}

// AvailablePlayers lists unsold players still open to selection.
func (s *Service) AvailablePlayers(ctx context.Context, auctionID int64) ([]models.Player, error) {
	return s.store.AvailablePlayers(ctx, auctionID)
}

// Selections returns a manager's current nominations with player rows.
func (s *Service) Selections(ctx context.Context, auctionID, managerID int64) ([]models.Round2Selection, error) {
	return s.store.ManagerSelections(ctx, auctionID, managerID)
}

// AllSelections returns every nomination in the auction, for the admin
// summary.
func (s *Service) AllSelections(ctx context.Context, auctionID int64) ([]models.Round2Selection, error) {
	return s.store.AuctionSelections(ctx, auctionID)
}

// Select nominates an unsold player. At most five per manager, and the
// unique (auction, player) index resolves races between managers: the
// first insert wins and later ones see ErrAlreadySelected.
func (s *Service) Select(ctx context.Context, auctionID, managerID, playerID int64) error {
	a, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if !a.Round2SelectionOpen {
		return auction.ErrSelectionClosed
	}

	count, err := s.store.CountSelections(ctx, auctionID, managerID)
	if err != nil {
		return err
	}
	if count >= models.MaxRound2Selections {
		return auction.ErrSelectionLimit
	}

	unsold, err := s.store.IsUnsold(ctx, auctionID, playerID)
	if err != nil {
		return err
	}
	if !unsold {
		return fmt.Errorf("player %d is not in the unsold pool", playerID)
	}

	sel := &models.Round2Selection{
		AuctionID: auctionID,
		ManagerID: managerID,
		PlayerID:  playerID,
	}
	if err := s.store.InsertSelection(ctx, sel); err != nil {
		return err
	}

	log.Info().
		Int64("auction_id", auctionID).
		Int64("manager_id", managerID).
		Int64("player_id", playerID).
		Msg("round2 selection added")
	return nil
}

// Deselect withdraws the manager's own nomination.
func (s *Service) Deselect(ctx context.Context, auctionID, managerID, playerID int64) error {
	a, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if !a.Round2SelectionOpen {
		return auction.ErrSelectionClosed
	}

	n, err := s.store.DeleteSelection(ctx, auctionID, managerID, playerID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("selection not found")
	}
	return nil
}
