package auction

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"github.com/nbbluestudios/crickbid/internal/auction/events"
	"github.com/nbbluestudios/crickbid/internal/managers"
	"github.com/nbbluestudios/crickbid/internal/models"
	"github.com/nbbluestudios/crickbid/internal/outbox"
)

// CreateParams configures a new auction.
type CreateParams struct {
	Name             string
	TournamentFilter string
	ClassFilter      models.ClassBand
	RoleFilter       models.PlayerRole
	ScheduledAt      time.Time
}

// Create opens a new live auction: every manager is reset to the
// starting budget with readiness cleared, the auction row is inserted,
// and the first player is presented. Refuses while another auction is
// live.
func (s *Service) Create(ctx context.Context, p CreateParams) (*models.Auction, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("auction name is required")
	}
	if !models.ValidClass(string(p.ClassFilter)) || !models.ValidRole(string(p.RoleFilter)) {
		return nil, fmt.Errorf("invalid starting category %s/%s", p.ClassFilter, p.RoleFilter)
	}
	if p.ScheduledAt.IsZero() {
		p.ScheduledAt = s.clock.Now().UTC()
	}

	a := &models.Auction{
		Name:             p.Name,
		TournamentFilter: p.TournamentFilter,
		ClassFilter:      p.ClassFilter,
		RoleFilter:       p.RoleFilter,
		Status:           models.AuctionStatusActive,
		Phase:            models.PhaseBidding,
		ScheduledAt:      p.ScheduledAt,
		TimerSeconds:     s.cfg.BidWindowSeconds,
	}

	err := s.repo.RunSerializable(ctx, func(ctx context.Context, tx bun.Tx) error {
		// The predicate read happens inside the serializable
		// transaction so two concurrent creates cannot both pass it.
		live, err := tx.NewSelect().
			Model((*models.Auction)(nil)).
			Where("status IN (?)", bun.In([]models.AuctionStatus{
				models.AuctionStatusActive, models.AuctionStatusRound2,
			})).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("check live auctions: %w", err)
		}
		if live {
			return ErrLiveAuctionExists
		}
		if err := managers.ResetAll(ctx, tx, s.cfg.StartingBudget); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(a).Returning("auction_id").Exec(ctx); err != nil {
			return fmt.Errorf("insert auction: %w", err)
		}
		err = outbox.Insert(ctx, tx, a.ID, events.TypeAuctionStarted, events.AuctionStartedPayload{
			AuctionName: a.Name,
			ClassFilter: string(a.ClassFilter),
			RoleFilter:  string(a.RoleFilter),
		})
		if err != nil {
			return err
		}
		return s.presentNext(ctx, tx, a)
	})
	if err != nil {
		return nil, err
	}

	s.wakeEngine()
	log.Info().Int64("auction_id", a.ID).Str("name", a.Name).Msg("auction created")
	return s.repo.Get(ctx, a.ID)
}

// Pause halts the countdown. The deadline is cleared so the engine has
// nothing to fire; resume re-arms a full window.
func (s *Service) Pause(ctx context.Context, auctionID int64) error {
	return s.transition(ctx, auctionID, func(ctx context.Context, tx bun.Tx, a *models.Auction) error {
		if a.IsPaused {
			return nil
		}
		_, err := tx.NewUpdate().
			Model((*models.Auction)(nil)).
			Set("is_paused = TRUE").
			Set("next_deadline_at = NULL").
			Where("auction_id = ?", a.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("pause auction: %w", err)
		}
		return outbox.Insert(ctx, tx, a.ID, events.TypeAuctionPaused, struct{}{})
	})
}

// Resume restarts the countdown with a full window for the current
// phase.
func (s *Service) Resume(ctx context.Context, auctionID int64) error {
	return s.transition(ctx, auctionID, func(ctx context.Context, tx bun.Tx, a *models.Auction) error {
		if !a.IsPaused {
			return nil
		}
		window := time.Duration(a.TimerSeconds) * time.Second
		if a.Phase == models.PhaseSettled {
			window = s.cfg.SettleDisplay()
		}
		deadline := s.clock.Now().UTC().Add(window)
		_, err := tx.NewUpdate().
			Model((*models.Auction)(nil)).
			Set("is_paused = FALSE").
			Set("next_deadline_at = ?", deadline).
			Where("auction_id = ?", a.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("resume auction: %w", err)
		}
		return outbox.Insert(ctx, tx, a.ID, events.TypeAuctionResumed, struct{}{})
	})
}

// Skip settles the current player immediately, sold or unsold as the
// standing bid dictates.
func (s *Service) Skip(ctx context.Context, auctionID int64) error {
	return s.settle(ctx, auctionID)
}

// ApplyFilters jumps the round-one rotation to a chosen category and
// presents a player from it at once. Both parts are required.
func (s *Service) ApplyFilters(ctx context.Context, auctionID int64, class models.ClassBand, role models.PlayerRole) error {
	if !models.ValidClass(string(class)) || !models.ValidRole(string(role)) {
		return fmt.Errorf("both class and role filters are required")
	}
	err := s.transition(ctx, auctionID, func(ctx context.Context, tx bun.Tx, a *models.Auction) error {
		if a.Status != models.AuctionStatusActive {
			return ErrNoLiveAuction
		}
		a.ClassFilter = class
		a.RoleFilter = role
		return s.presentNext(ctx, tx, a)
	})
	if err != nil {
		return err
	}
	s.wakeEngine()
	return nil
}

// OpenRound2Selection lets managers nominate unsold players.
func (s *Service) OpenRound2Selection(ctx context.Context, auctionID int64) error {
	return s.setSelectionOpen(ctx, auctionID, true)
}

// CloseRound2Selection ends the nomination window.
func (s *Service) CloseRound2Selection(ctx context.Context, auctionID int64) error {
	return s.setSelectionOpen(ctx, auctionID, false)
}

func (s *Service) setSelectionOpen(ctx context.Context, auctionID int64, open bool) error {
	return s.transition(ctx, auctionID, func(ctx context.Context, tx bun.Tx, a *models.Auction) error {
		_, err := tx.NewUpdate().
			Model((*models.Auction)(nil)).
			Set("round2_selection_open = ?", open).
			Where("auction_id = ?", a.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("set selection window: %w", err)
		}
		return nil
	})
}

// StartRound2 closes the nomination window and begins round-two
// bidding over the selected pool.
func (s *Service) StartRound2(ctx context.Context, auctionID int64) error {
	err := s.transition(ctx, auctionID, func(ctx context.Context, tx bun.Tx, a *models.Auction) error {
		count, err := tx.NewSelect().
			Model((*models.Round2Selection)(nil)).
			Where("auction_id = ?", a.ID).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("count selections: %w", err)
		}
		if count == 0 {
			return ErrNoSelections
		}

		_, err = tx.NewUpdate().
			Model((*models.Auction)(nil)).
			Set("status = ?", models.AuctionStatusRound2).
			Set("round2_selection_open = FALSE").
			Set("round2_started = TRUE").
			Where("auction_id = ?", a.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("start round two: %w", err)
		}
		a.Status = models.AuctionStatusRound2

		err = outbox.Insert(ctx, tx, a.ID, events.TypeRound2Started, events.Round2StartedPayload{
			SelectionCount: count,
		})
		if err != nil {
			return err
		}
		return s.presentNext(ctx, tx, a)
	})
	if err != nil {
		return err
	}
	s.wakeEngine()
	return nil
}

// transition runs fn with the auction row locked.
func (s *Service) transition(ctx context.Context, auctionID int64, fn func(ctx context.Context, tx bun.Tx, a *models.Auction) error) error {
	return s.repo.RunSerializable(ctx, func(ctx context.Context, tx bun.Tx) error {
		a, err := GetForUpdate(ctx, tx, auctionID)
		if err != nil {
			return err
		}
		return fn(ctx, tx, a)
	})
}
