package models

import (
	"time"

	"github.com/uptrace/bun"
)

// AuctionStatus is the lifecycle state of an auction.
type AuctionStatus string

const (
	// AuctionStatusDraft is created but not yet opened for bidding.
	AuctionStatusDraft AuctionStatus = "draft"
	// AuctionStatusActive is round-one bidding in progress.
	AuctionStatusActive AuctionStatus = "active"
	// AuctionStatusRound2 is round-two bidding over manager selections.
	AuctionStatusRound2 AuctionStatus = "round2"
	// AuctionStatusCompleted is terminal: every pool has been exhausted.
	AuctionStatusCompleted AuctionStatus = "completed"
)

// Live reports whether bidding can occur in this status.
func (s AuctionStatus) Live() bool {
	return s == AuctionStatusActive || s == AuctionStatusRound2
}

// AuctionPhase is the engine sub-state within a live auction.
type AuctionPhase string

const (
	// PhaseBidding means a player is on the block and the countdown runs.
	PhaseBidding AuctionPhase = "bidding"
	// PhaseSettled means the sale result is being displayed before the
	// next player is presented.
	PhaseSettled AuctionPhase = "settled"
)

// Auction is the single mutable coordination row for a live auction.
// The engine owns next_deadline_at; clients only render it.
type Auction struct {
	bun.BaseModel `bun:"table:auctions,alias:a"`

	ID               int64         `bun:"auction_id,pk,autoincrement" json:"auction_id"`
	Name             string        `bun:"auction_name,notnull" json:"auction_name"`
	TournamentFilter string        `bun:"tournament_filter" json:"tournament_filter"`
	ClassFilter      ClassBand     `bun:"class_filter,notnull" json:"class_filter"`
	RoleFilter       PlayerRole    `bun:"role_filter,notnull" json:"role_filter"`
	Status           AuctionStatus `bun:"status,notnull" json:"status"`
	Phase            AuctionPhase  `bun:"phase,notnull,default:'bidding'" json:"phase"`
	ScheduledAt      time.Time     `bun:"scheduled_at,notnull" json:"scheduled_at"`

	CurrentPlayerID     *int64 `bun:"current_player_id" json:"current_player_id"`
	CurrentBidAmount    int64  `bun:"current_bid_amount,notnull,default:0" json:"current_bid_amount"`
	CurrentBidManagerID *int64 `bun:"current_bid_manager_id" json:"current_bid_manager_id"`

	TimerSeconds   int        `bun:"timer_seconds,notnull" json:"timer_seconds"`
	NextDeadlineAt *time.Time `bun:"next_deadline_at" json:"next_deadline_at"`
	IsPaused       bool       `bun:"is_paused,notnull,default:false" json:"is_paused"`

	Round2SelectionOpen bool `bun:"round2_selection_open,notnull,default:false" json:"round2_selection_open"`
	Round2Started       bool `bun:"round2_started,notnull,default:false" json:"round2_started"`

	StatusMessage string    `bun:"status_message" json:"status_message"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// HasBid reports whether the current player has received at least one bid.
// The amount and the bidder id are always set or cleared together.
func (a *Auction) HasBid() bool {
	return a.CurrentBidManagerID != nil
}

// Round returns 1 during round-one statuses and 2 once round two has begun.
func (a *Auction) Round() int {
	if a.Status == AuctionStatusRound2 {
		return 2
	}
	return 1
}

// NextBidAmount returns the amount the next bid must carry, given the
// on-block player's base price. With no standing bid the opening amount
// is the base price, or the floor of 5 when the base price is zero.
// Round-two players always re-open at the floor: their round-one base
// price no longer applies.
func (a *Auction) NextBidAmount(basePrice int64) int64 {
	if a.Round() == 2 {
		basePrice = 0
	}
	if !a.HasBid() {
		if basePrice <= 0 {
			return 5
		}
		return basePrice
	}
	switch cur := a.CurrentBidAmount; {
	case cur < 100:
		return cur + 5
	case cur < 200:
		return cur + 10
	default:
		return cur + 20
	}
}
