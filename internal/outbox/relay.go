// Package outbox implements the transactional outbox: state changes
// enqueue events in the same transaction, and a relay publishes them
// to the bus.
package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/nbbluestudios/crickbid/internal/models"
)

// RelayConfig tunes the outbox relay.
type RelayConfig struct {
	// NotifyChannel is the Postgres NOTIFY channel fired by the outbox
	// insert trigger.
	NotifyChannel string
	// PollInterval bounds staleness when notifications are missed.
	PollInterval time.Duration
	BatchSize    int
	MaxRetries   int
	RetryDelay   time.Duration
}

// DefaultRelayConfig returns production defaults.
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		NotifyChannel: "auction_outbox_events",
		PollInterval:  5 * time.Second,
		BatchSize:     100,
		MaxRetries:    3,
		RetryDelay:    time.Second,
	}
}

// Relay drains the outbox to the bus. It wakes on LISTEN/NOTIFY and
// falls back to interval polling.
type Relay struct {
	repo      *Repository
	publisher Publisher
	cfg       RelayConfig
	dsn       string
}

// NewRelay builds a relay over the repository and publisher. dsn is the
// Postgres connection string for the dedicated LISTEN connection.
func NewRelay(repo *Repository, publisher Publisher, dsn string, cfg RelayConfig) *Relay {
	return &Relay{repo: repo, publisher: publisher, cfg: cfg, dsn: dsn}
}

// Run blocks until ctx is cancelled, draining the outbox on every
// notification or poll tick.
func (r *Relay) Run(ctx context.Context) error {
	listener := pq.NewListener(r.dsn, 10*time.Second, time.Minute,
		func(event pq.ListenerEventType, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("outbox listener event")
			}
		})
	defer listener.Close()

	if err := listener.Listen(r.cfg.NotifyChannel); err != nil {
		return fmt.Errorf("listen on %s: %w", r.cfg.NotifyChannel, err)
	}

	log.Info().
		Str("channel", r.cfg.NotifyChannel).
		Dur("poll_interval", r.cfg.PollInterval).
		Msg("outbox relay started")

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	// Drain anything that accumulated while the relay was down.
	r.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("outbox relay stopping")
			return ctx.Err()
		case <-listener.Notify:
			r.drain(ctx)
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

// drain publishes unsent events in batches until the backlog is empty.
func (r *Relay) drain(ctx context.Context) {
	for {
		n, err := r.relayBatch(ctx)
		if err != nil {
			log.Error().Err(err).Msg("relay batch failed")
			return
		}
		if n < r.cfg.BatchSize {
			return
		}
	}
}

func (r *Relay) relayBatch(ctx context.Context) (int, error) {
	tx, err := r.repo.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin relay tx: %w", err)
	}
	defer tx.Rollback()

	evs, err := r.repo.ClaimUnsent(ctx, tx, r.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(evs) == 0 {
		return 0, nil
	}

	sent := make([]string, 0, len(evs))
	for _, ev := range evs {
		if err := r.publishWithRetry(ctx, ev); err != nil {
			// Leave the remainder unsent; ordering within the batch is
			// preserved by stopping at the first failure.
			log.Error().Err(err).Str("event_id", ev.ID).Msg("publish failed, requeueing")
			break
		}
		sent = append(sent, ev.ID)
	}

	if err := r.repo.MarkSent(ctx, tx, sent); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit relay tx: %w", err)
	}

	if len(sent) > 0 {
		log.Debug().Int("count", len(sent)).Msg("relayed outbox events")
	}
	return len(evs), nil
}

func (r *Relay) publishWithRetry(ctx context.Context, ev models.OutboxEvent) error {
	var lastErr error
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.cfg.RetryDelay * time.Duration(attempt)):
			}
		}
		if lastErr = r.publisher.Publish(ctx, ev); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("publish after %d attempts: %w", r.cfg.MaxRetries+1, lastErr)
}
