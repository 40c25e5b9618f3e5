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

// settleOutcome is the decision made when a bidding window closes.
type settleOutcome int

const (
	// settleNone: nothing to settle; the auction is not live, already
	// settled, or has no player on the block.
	settleNone settleOutcome = iota
	// settleSold: a standing bid wins the player.
	settleSold
	// settleUnsold: no bid in round one; the player gets an unsold marker.
	settleUnsold
	// settlePassed: no bid in round two; the player drops out of the
	// pool without a marker.
	settlePassed
)

// settleOutcomeFor decides what closing the current window means for
// the auction's state, without touching the database.
func settleOutcomeFor(a *models.Auction) settleOutcome {
	switch {
	case !a.Status.Live(), a.Phase != models.PhaseBidding, a.CurrentPlayerID == nil:
		return settleNone
	case a.HasBid():
		return settleSold
	case a.Round() == 1:
		return settleUnsold
	default:
		return settlePassed
	}
}

// settle closes bidding on the current player: with a standing bid the
// player is sold and the winner's budget debited in the same
// transaction; otherwise the player is marked unsold (round one only).
// The auction moves to the settled phase for a short display window.
// A second settle attempt sees the settled phase and no-ops, so the
// operation is idempotent.
func (s *Service) settle(ctx context.Context, auctionID int64) error {
	err := s.repo.RunSerializable(ctx, func(ctx context.Context, tx bun.Tx) error {
		a, err := GetForUpdate(ctx, tx, auctionID)
		if err != nil {
			return err
		}
		outcome := settleOutcomeFor(a)
		if outcome == settleNone {
			return nil
		}

		player := new(models.Player)
		if err := tx.NewSelect().Model(player).
			Where("p.player_id = ?", *a.CurrentPlayerID).Scan(ctx); err != nil {
			return fmt.Errorf("load player on block: %w", err)
		}

		var statusMessage string
		if outcome == settleSold {
			winner := new(models.Manager)
			if err := tx.NewSelect().Model(winner).
				Where("m.manager_id = ?", *a.CurrentBidManagerID).
				For("UPDATE").
				Scan(ctx); err != nil {
				return fmt.Errorf("load winner: %w", err)
			}

			tp := &models.TeamPlayer{
				AuctionID: auctionID,
				ManagerID: winner.ID,
				PlayerID:  player.ID,
				Price:     a.CurrentBidAmount,
				Round:     a.Round(),
			}
			if _, err := tx.NewInsert().Model(tp).Exec(ctx); err != nil {
				return fmt.Errorf("record sale: %w", err)
			}

			res, err := tx.NewUpdate().
				Model((*models.Manager)(nil)).
				Set("current_budget = current_budget - ?", a.CurrentBidAmount).
				Where("manager_id = ?", winner.ID).
				Where("current_budget >= ?", a.CurrentBidAmount).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("debit winner: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("debit winner %d: budget below sale price", winner.ID)
			}

			statusMessage = fmt.Sprintf("%s SOLD to %s for %d", player.Name, winner.TeamName, a.CurrentBidAmount)
			err = outbox.Insert(ctx, tx, auctionID, events.TypePlayerSold, events.PlayerSoldPayload{
				PlayerID:   player.ID,
				PlayerName: player.Name,
				ManagerID:  winner.ID,
				TeamName:   winner.TeamName,
				Price:      a.CurrentBidAmount,
				Round:      a.Round(),
			})
			if err != nil {
				return err
			}

			log.Info().
				Int64("auction_id", auctionID).
				Int64("player_id", player.ID).
				Int64("manager_id", winner.ID).
				Int64("price", a.CurrentBidAmount).
				Msg("player sold")
		} else {
			// Round two draws from already-nominated players; passing
			// again leaves them out without a second unsold marker.
			if outcome == settleUnsold {
				up := &models.UnsoldPlayer{AuctionID: auctionID, PlayerID: player.ID}
				if _, err := tx.NewInsert().Model(up).
					On("CONFLICT (auction_id, player_id) DO NOTHING").
					Exec(ctx); err != nil {
					return fmt.Errorf("mark unsold: %w", err)
				}
			}

			statusMessage = fmt.Sprintf("%s UNSOLD", player.Name)
			err = outbox.Insert(ctx, tx, auctionID, events.TypePlayerUnsold, events.PlayerUnsoldPayload{
				PlayerID:   player.ID,
				PlayerName: player.Name,
			})
			if err != nil {
				return err
			}

			log.Info().
				Int64("auction_id", auctionID).
				Int64("player_id", player.ID).
				Msg("player unsold")
		}

		displayUntil := s.clock.Now().UTC().Add(s.cfg.SettleDisplay())
		if _, err := tx.NewUpdate().
			Model((*models.Auction)(nil)).
			Set("phase = ?", models.PhaseSettled).
			Set("next_deadline_at = ?", displayUntil).
			Set("status_message = ?", statusMessage).
			Where("auction_id = ?", auctionID).
			Exec(ctx); err != nil {
			return fmt.Errorf("enter settled phase: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.wakeEngine()
	return nil
}

// advance leaves the settled display window and presents the next
// player. No-op unless the auction is live and settled.
func (s *Service) advance(ctx context.Context, auctionID int64) error {
	err := s.repo.RunSerializable(ctx, func(ctx context.Context, tx bun.Tx) error {
		a, err := GetForUpdate(ctx, tx, auctionID)
		if err != nil {
			return err
		}
		if !a.Status.Live() || a.Phase != models.PhaseSettled {
			return nil
		}
		return s.presentNext(ctx, tx, a)
	})
	if err != nil {
		return err
	}
	s.wakeEngine()
	return nil
}

// FireDeadline runs the transition due for the auction: a bidding
// deadline settles the current player, a settled deadline advances to
// the next. Called by the engine when the countdown elapses.
func (s *Service) FireDeadline(ctx context.Context, auctionID int64) error {
	a, err := s.repo.Get(ctx, auctionID)
	if err != nil {
		return err
	}
	if !a.Status.Live() || a.IsPaused || a.NextDeadlineAt == nil {
		return nil
	}
	if a.NextDeadlineAt.After(s.clock.Now().Add(time.Millisecond)) {
		return nil
	}

	switch a.Phase {
	case models.PhaseBidding:
		return s.settle(ctx, auctionID)
	case models.PhaseSettled:
		return s.advance(ctx, auctionID)
	}
	return nil
}
