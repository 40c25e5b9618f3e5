package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TeamPlayer records a completed sale. The (auction, player) pair is
// unique so a player can be sold at most once per auction.
type TeamPlayer struct {
	bun.BaseModel `bun:"table:team_players,alias:tp"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	AuctionID int64     `bun:"auction_id,notnull" json:"auction_id"`
	ManagerID int64     `bun:"manager_id,notnull" json:"manager_id"`
	PlayerID  int64     `bun:"player_id,notnull" json:"player_id"`
	Price     int64     `bun:"price,notnull" json:"price"`
	Round     int       `bun:"round,notnull,default:1" json:"round"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	Player *Player `bun:"rel:belongs-to,join:player_id=player_id" json:"player,omitempty"`
}

// UnsoldPlayer marks a player that passed through round one with no bid.
// Unsold players re-enter the pool only through round-two selection.
type UnsoldPlayer struct {
	bun.BaseModel `bun:"table:unsold_players,alias:up"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	AuctionID int64     `bun:"auction_id,notnull" json:"auction_id"`
	PlayerID  int64     `bun:"player_id,notnull" json:"player_id"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// Round2Selection is a manager's nomination of an unsold player for
// round two. The (auction, player) pair is unique across managers.
type Round2Selection struct {
	bun.BaseModel `bun:"table:round2_selections,alias:r2"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	AuctionID int64     `bun:"auction_id,notnull" json:"auction_id"`
	ManagerID int64     `bun:"manager_id,notnull" json:"manager_id"`
	PlayerID  int64     `bun:"player_id,notnull" json:"player_id"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	Player *Player `bun:"rel:belongs-to,join:player_id=player_id" json:"player,omitempty"`
}

// MaxRound2Selections caps nominations per manager.
const MaxRound2Selections = 5
