package auction

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"github.com/nbbluestudios/crickbid/internal/auction/events"
	"github.com/nbbluestudios/crickbid/internal/models"
	"github.com/nbbluestudios/crickbid/internal/outbox"
	"github.com/nbbluestudios/crickbid/internal/players"
)

// NextCategory returns the category after (class, role) in the fixed
// traversal: roles advance within a class, then the next class starts
// from the first role. ok is false past the final category.
func NextCategory(class models.ClassBand, role models.PlayerRole) (models.ClassBand, models.PlayerRole, bool) {
	classIdx, roleIdx := -1, -1
	for i, c := range models.ClassOrder {
		if c == class {
			classIdx = i
			break
		}
	}
	for i, r := range models.RoleOrder {
		if r == role {
			roleIdx = i
			break
		}
	}
	if classIdx < 0 || roleIdx < 0 {
		return models.ClassOrder[0], models.RoleOrder[0], true
	}

	roleIdx++
	if roleIdx == len(models.RoleOrder) {
		roleIdx = 0
		classIdx++
	}
	if classIdx == len(models.ClassOrder) {
		return "", "", false
	}
	return models.ClassOrder[classIdx], models.RoleOrder[roleIdx], true
}

// presentNext picks the next player for the locked auction row and arms
// the bid countdown. In round one it walks the category traversal,
// advancing past empty categories; in round two it draws from the flat
// selection pool. When every pool is exhausted the auction completes.
func (s *Service) presentNext(ctx context.Context, tx bun.Tx, a *models.Auction) error {
	var (
		pool    []models.Player
		err     error
		class   = a.ClassFilter
		role    = a.RoleFilter
		stepped bool
	)

	if a.Status == models.AuctionStatusRound2 {
		pool, err = players.Round2Pool(ctx, tx, a.ID)
		if err != nil {
			return err
		}
		if len(pool) == 0 {
			return s.complete(ctx, tx, a)
		}
	} else {
		for {
			pool, err = players.AvailableInCategory(ctx, tx, a.ID, class, role)
			if err != nil {
				return err
			}
			if len(pool) > 0 {
				break
			}
			nextClass, nextRole, ok := NextCategory(class, role)
			if !ok {
				return s.complete(ctx, tx, a)
			}
			class, role = nextClass, nextRole
			stepped = true
		}
	}

	pick := pool[rand.Intn(len(pool))]
	deadline := s.clock.Now().UTC().Add(time.Duration(a.TimerSeconds) * time.Second)

	_, err = tx.NewUpdate().
		Model((*models.Auction)(nil)).
		Set("class_filter = ?", class).
		Set("role_filter = ?", role).
		Set("current_player_id = ?", pick.ID).
		Set("current_bid_amount = 0").
		Set("current_bid_manager_id = NULL").
		Set("phase = ?", models.PhaseBidding).
		Set("next_deadline_at = ?", deadline).
		Set("status_message = ''").
		Where("auction_id = ?", a.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("present player: %w", err)
	}

	if stepped {
		err = outbox.Insert(ctx, tx, a.ID, events.TypeCategoryAdvanced, events.CategoryAdvancedPayload{
			ClassBand: string(class),
			Role:      string(role),
		})
		if err != nil {
			return err
		}
	}

	err = outbox.Insert(ctx, tx, a.ID, events.TypePlayerPresented, events.PlayerPresentedPayload{
		PlayerID:     pick.ID,
		PlayerName:   pick.Name,
		Role:         string(pick.Role),
		ClassBand:    string(pick.Class),
		BasePrice:    pick.BasePrice,
		Round:        a.Round(),
		DeadlineAt:   deadline,
		TimerSeconds: a.TimerSeconds,
	})
	if err != nil {
		return err
	}

	log.Info().
		Int64("auction_id", a.ID).
		Int64("player_id", pick.ID).
		Str("class", string(class)).
		Str("role", string(role)).
		Msg("player presented")
	return nil
}

// complete marks the auction terminal and clears the countdown.
func (s *Service) complete(ctx context.Context, tx bun.Tx, a *models.Auction) error {
	_, err := tx.NewUpdate().
		Model((*models.Auction)(nil)).
		Set("status = ?", models.AuctionStatusCompleted).
		Set("current_player_id = NULL").
		Set("current_bid_amount = 0").
		Set("current_bid_manager_id = NULL").
		Set("next_deadline_at = NULL").
		Set("status_message = 'Auction completed'").
		Where("auction_id = ?", a.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("complete auction: %w", err)
	}

	sold, err := tx.NewSelect().Model((*models.TeamPlayer)(nil)).
		Where("auction_id = ?", a.ID).Count(ctx)
	if err != nil {
		return fmt.Errorf("count sold: %w", err)
	}
	unsold, err := tx.NewSelect().Model((*models.UnsoldPlayer)(nil)).
		Where("auction_id = ?", a.ID).Count(ctx)
	if err != nil {
		return fmt.Errorf("count unsold: %w", err)
	}

	if err := outbox.Insert(ctx, tx, a.ID, events.TypeAuctionCompleted, events.AuctionCompletedPayload{
		SoldCount:   sold,
		UnsoldCount: unsold,
	}); err != nil {
		return err
	}

	log.Info().Int64("auction_id", a.ID).Int("sold", sold).Int("unsold", unsold).
		Msg("auction completed")
	return nil
}
