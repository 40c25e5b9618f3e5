package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// OutboxEvent is one pending realtime event, inserted in the same
// transaction as the state change it describes and relayed to the bus
// by the outbox relay.
type OutboxEvent struct {
	bun.BaseModel `bun:"table:auction_outbox,alias:ob"`

	ID        string          `bun:"id,pk,type:uuid" json:"id"`
	AuctionID int64           `bun:"auction_id,notnull" json:"auction_id"`
	EventType string          `bun:"event_type,notnull" json:"event_type"`
	Payload   json.RawMessage `bun:"payload,type:jsonb,notnull" json:"payload"`
	CreatedAt time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	SentAt    *time.Time      `bun:"sent_at" json:"sent_at"`
}
