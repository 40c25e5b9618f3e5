package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Bid is one append-only audit row. The live bid state lives on the
// auction row; this table is never read on the hot path.
type Bid struct {
	bun.BaseModel `bun:"table:bids,alias:b"`

	ID        int64     `bun:"bid_id,pk,autoincrement" json:"bid_id"`
	AuctionID int64     `bun:"auction_id,notnull" json:"auction_id"`
	ManagerID int64     `bun:"manager_id,notnull" json:"manager_id"`
	PlayerID  int64     `bun:"player_id,notnull" json:"player_id"`
	Amount    int64     `bun:"amount,notnull" json:"amount"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
