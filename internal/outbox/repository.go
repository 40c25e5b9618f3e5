package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/nbbluestudios/crickbid/internal/auction/events"
	"github.com/nbbluestudios/crickbid/internal/models"
)

// Repository persists outbox events. Insert runs inside the caller's
// transaction so events commit atomically with the state they describe.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Insert enqueues one event within tx.
func Insert(ctx context.Context, tx bun.IDB, auctionID int64, eventType string, payload any) error {
	raw, err := events.Marshal(payload)
	if err != nil {
		return err
	}
	ev := &models.OutboxEvent{
		ID:        uuid.NewString(),
		AuctionID: auctionID,
		EventType: eventType,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := tx.NewInsert().Model(ev).Exec(ctx); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// ClaimUnsent locks and returns up to limit unsent events, oldest first.
// SKIP LOCKED lets concurrent relays divide the backlog without blocking.
func (r *Repository) ClaimUnsent(ctx context.Context, tx bun.Tx, limit int) ([]models.OutboxEvent, error) {
	var evs []models.OutboxEvent
	err := tx.NewSelect().
		Model(&evs).
		Where("ob.sent_at IS NULL").
		Order("ob.created_at ASC").
		Limit(limit).
		For("UPDATE SKIP LOCKED").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("claim unsent events: %w", err)
	}
	return evs, nil
}

// MarkSent stamps the given events as published.
func (r *Repository) MarkSent(ctx context.Context, tx bun.Tx, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC()
	_, err := tx.NewUpdate().
		Model((*models.OutboxEvent)(nil)).
		Set("sent_at = ?", now).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("mark events sent: %w", err)
	}
	return nil
}

// DeleteForAuction removes every event for the auction. Used by the
// cascade delete of an auction.
func DeleteForAuction(ctx context.Context, tx bun.IDB, auctionID int64) error {
	_, err := tx.NewDelete().
		Model((*models.OutboxEvent)(nil)).
		Where("auction_id = ?", auctionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete outbox events: %w", err)
	}
	return nil
}

// BeginTx starts a relay transaction on the underlying handle.
func (r *Repository) BeginTx(ctx context.Context) (bun.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}
