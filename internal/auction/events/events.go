// Package events defines the realtime event envelope and payloads
// published through the outbox to connected clients.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types carried on the bus and over websockets.
const (
	TypeAuctionStarted   = "AuctionStarted"
	TypePlayerPresented  = "PlayerPresented"
	TypeBidPlaced        = "BidPlaced"
	TypePlayerSold       = "PlayerSold"
	TypePlayerUnsold     = "PlayerUnsold"
	TypeAuctionPaused    = "AuctionPaused"
	TypeAuctionResumed   = "AuctionResumed"
	TypeCategoryAdvanced = "CategoryAdvanced"
	TypeRound2Started    = "Round2Started"
	TypeAuctionCompleted = "AuctionCompleted"
)

// Envelope is the wire format on the bus and over websockets.
type Envelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	AuctionID int64           `json:"auction_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// AuctionStartedPayload announces a freshly created live auction.
type AuctionStartedPayload struct {
	AuctionName string `json:"auction_name"`
	ClassFilter string `json:"class_filter"`
	RoleFilter  string `json:"role_filter"`
}

// PlayerPresentedPayload puts a player on the block. Clients render the
// countdown from DeadlineAt; the server owns the clock.
type PlayerPresentedPayload struct {
	PlayerID     int64     `json:"player_id"`
	PlayerName   string    `json:"player_name"`
	Role         string    `json:"role"`
	ClassBand    string    `json:"class_band"`
	BasePrice    int64     `json:"base_price"`
	Round        int       `json:"round"`
	DeadlineAt   time.Time `json:"deadline_at"`
	TimerSeconds int       `json:"timer_seconds"`
}

// BidPlacedPayload broadcasts a standing-bid change and the reset deadline.
type BidPlacedPayload struct {
	PlayerID    int64     `json:"player_id"`
	ManagerID   int64     `json:"manager_id"`
	ManagerName string    `json:"manager_name"`
	TeamName    string    `json:"team_name"`
	Amount      int64     `json:"amount"`
	DeadlineAt  time.Time `json:"deadline_at"`
}

// PlayerSoldPayload reports a settled sale.
type PlayerSoldPayload struct {
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name"`
	ManagerID  int64  `json:"manager_id"`
	TeamName   string `json:"team_name"`
	Price      int64  `json:"price"`
	Round      int    `json:"round"`
}

// PlayerUnsoldPayload reports a player passing with no bids.
type PlayerUnsoldPayload struct {
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// CategoryAdvancedPayload announces the rotation moving to a new
// (class, role) category.
type CategoryAdvancedPayload struct {
	ClassBand string `json:"class_band"`
	Role      string `json:"role"`
}

// Round2StartedPayload announces the start of round-two bidding.
type Round2StartedPayload struct {
	SelectionCount int `json:"selection_count"`
}

// AuctionCompletedPayload is the terminal event for an auction.
type AuctionCompletedPayload struct {
	SoldCount   int `json:"sold_count"`
	UnsoldCount int `json:"unsold_count"`
}

// Marshal renders a payload for the outbox, failing loudly on
// unmarshalable payloads rather than enqueueing garbage.
func Marshal(payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return data, nil
}
