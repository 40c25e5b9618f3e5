package auction

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"github.com/nbbluestudios/crickbid/internal/auction/events"
	"github.com/nbbluestudios/crickbid/internal/models"
	"github.com/nbbluestudios/crickbid/internal/outbox"
)

// PlaceBid admits a bid for the player on the block. The whole
// admission runs in one SERIALIZABLE transaction with the auction row
// locked, so concurrent bids serialize and exactly one of them lands on
// any given standing amount.
func (s *Service) PlaceBid(ctx context.Context, auctionID, managerID int64) (*Snapshot, error) {
	var amount int64
	err := s.repo.RunSerializable(ctx, func(ctx context.Context, tx bun.Tx) error {
		a, err := GetForUpdate(ctx, tx, auctionID)
		if err != nil {
			return err
		}
		if !a.Status.Live() {
			return ErrNoLiveAuction
		}
		if a.IsPaused {
			return ErrAuctionPaused
		}
		if a.Phase != models.PhaseBidding {
			return ErrNotBidding
		}
		if a.CurrentPlayerID == nil {
			return ErrNoPlayerOnBlock
		}
		if a.CurrentBidManagerID != nil && *a.CurrentBidManagerID == managerID {
			return ErrAlreadyHighest
		}

		player := new(models.Player)
		if err := tx.NewSelect().Model(player).
			Where("p.player_id = ?", *a.CurrentPlayerID).Scan(ctx); err != nil {
			return fmt.Errorf("load player on block: %w", err)
		}

		manager := new(models.Manager)
		if err := tx.NewSelect().Model(manager).
			Where("m.manager_id = ?", managerID).
			For("UPDATE").
			Scan(ctx); err != nil {
			return fmt.Errorf("load bidder: %w", err)
		}

		rosterSize, err := RosterCount(ctx, tx, auctionID, managerID)
		if err != nil {
			return err
		}
		if rosterSize >= models.MaxRosterSize {
			return ErrRosterFull
		}

		amount = a.NextBidAmount(player.BasePrice)
		if manager.CurrentBudget < amount {
			return ErrInsufficientBudget
		}

		verdict, err := evaluateFreezeTx(ctx, tx, a, manager, rosterSize)
		if err != nil {
			return err
		}
		if verdict.Frozen {
			return ErrBiddingFrozen
		}

		deadline := s.clock.Now().UTC().Add(time.Duration(a.TimerSeconds) * time.Second)
		res, err := tx.NewUpdate().
			Model((*models.Auction)(nil)).
			Set("current_bid_amount = ?", amount).
			Set("current_bid_manager_id = ?", managerID).
			Set("next_deadline_at = ?", deadline).
			Where("auction_id = ?", auctionID).
			Where("phase = ?", models.PhaseBidding).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("record bid: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrLockContended
		}

		bid := &models.Bid{
			AuctionID: auctionID,
			ManagerID: managerID,
			PlayerID:  *a.CurrentPlayerID,
			Amount:    amount,
		}
		if _, err := tx.NewInsert().Model(bid).Exec(ctx); err != nil {
			return fmt.Errorf("append bid audit: %w", err)
		}

		return outbox.Insert(ctx, tx, auctionID, events.TypeBidPlaced, events.BidPlacedPayload{
			PlayerID:    *a.CurrentPlayerID,
			ManagerID:   managerID,
			ManagerName: manager.Name,
			TeamName:    manager.TeamName,
			Amount:      amount,
			DeadlineAt:  deadline,
		})
	})
	if err != nil {
		return nil, err
	}

	// The deadline moved; the engine may be sleeping toward an older one.
	s.wakeEngine()

	log.Info().
		Int64("auction_id", auctionID).
		Int64("manager_id", managerID).
		Int64("amount", amount).
		Msg("bid placed")

	return s.Snapshot(ctx, auctionID)
}
