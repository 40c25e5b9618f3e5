// Package auction implements the live-auction state machine: bid
// admission, the server-owned countdown, player rotation, and sale
// settlement.
package auction

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/nbbluestudios/crickbid/internal/config"
	"github.com/nbbluestudios/crickbid/internal/managers"
	"github.com/nbbluestudios/crickbid/internal/models"
	"github.com/nbbluestudios/crickbid/internal/players"
)

// Service coordinates every auction state transition. All writes to the
// auction row happen under FOR UPDATE inside a transaction, so the row
// itself is the lock.
type Service struct {
	repo     *Repository
	players  *players.Repository
	managers *managers.Repository
	cfg      config.Auction
	clock    clockwork.Clock

	// wake nudges the engine after a deadline moves earlier. Set by the
	// engine at startup; nil in tools that run without one.
	wake func()
}

func NewService(repo *Repository, playerRepo *players.Repository, managerRepo *managers.Repository, cfg config.Auction, clock clockwork.Clock) *Service {
	return &Service{
		repo:     repo,
		players:  playerRepo,
		managers: managerRepo,
		cfg:      cfg,
		clock:    clock,
	}
}

// SetWake registers the engine's wake callback.
func (s *Service) SetWake(fn func()) {
	s.wake = fn
}

func (s *Service) wakeEngine() {
	if s.wake != nil {
		s.wake()
	}
}

// Snapshot is the full client-facing auction state.
type Snapshot struct {
	Auction       *models.Auction `json:"auction"`
	CurrentPlayer *models.Player  `json:"current_player,omitempty"`
	HighestBidder *models.Manager `json:"highest_bidder,omitempty"`
	NextBidAmount int64           `json:"next_bid_amount"`
}

// Snapshot assembles the state a client needs to render the auction.
func (s *Service) Snapshot(ctx context.Context, auctionID int64) (*Snapshot, error) {
	a, err := s.repo.Get(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Auction: a}
	if a.CurrentPlayerID != nil {
		p, err := s.players.GetByID(ctx, *a.CurrentPlayerID)
		if err != nil {
			return nil, fmt.Errorf("load current player: %w", err)
		}
		snap.CurrentPlayer = p
		snap.NextBidAmount = a.NextBidAmount(p.BasePrice)
	}
	if a.CurrentBidManagerID != nil {
		m, err := s.managers.GetByID(ctx, *a.CurrentBidManagerID)
		if err != nil {
			return nil, fmt.Errorf("load highest bidder: %w", err)
		}
		snap.HighestBidder = m
	}
	return snap, nil
}

// Live returns the current live auction's snapshot.
func (s *Service) Live(ctx context.Context) (*Snapshot, error) {
	a, err := s.repo.GetLive(ctx)
	if err != nil {
		return nil, err
	}
	return s.Snapshot(ctx, a.ID)
}

// Roster returns a manager's purchases in the auction.
func (s *Service) Roster(ctx context.Context, auctionID, managerID int64) ([]models.TeamPlayer, error) {
	return s.repo.Roster(ctx, auctionID, managerID)
}

// List returns auction history, newest first.
func (s *Service) List(ctx context.Context) ([]models.Auction, error) {
	return s.repo.List(ctx)
}

// Delete removes an auction and all its results.
func (s *Service) Delete(ctx context.Context, auctionID int64) error {
	if err := s.repo.CascadeDelete(ctx, auctionID); err != nil {
		return err
	}
	log.Info().Int64("auction_id", auctionID).Msg("auction deleted")
	return nil
}
