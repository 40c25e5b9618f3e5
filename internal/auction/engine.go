package auction

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DeadlineSource yields the earliest pending countdown deadline.
// sql.ErrNoRows means nothing is scheduled.
type DeadlineSource interface {
	NextDeadline(ctx context.Context) (int64, time.Time, error)
}

// DeadlineFirer runs the transition due for an auction.
type DeadlineFirer interface {
	FireDeadline(ctx context.Context, auctionID int64) error
}

// EngineConfig tunes the countdown engine.
type EngineConfig struct {
	// IdlePoll bounds how long the engine sleeps with no deadline
	// scheduled, catching rows written by other processes.
	IdlePoll time.Duration
	// RetryDelay spaces retries after a failed firing.
	RetryDelay time.Duration
}

// DefaultEngineConfig returns production defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		IdlePoll:   5 * time.Second,
		RetryDelay: time.Second,
	}
}

// Engine owns the auction countdown. It sleeps until the earliest
// deadline across live auctions, fires the due transition, and repeats.
// Wake interrupts the sleep when a deadline moves earlier, such as
// after a bid resets the countdown.
type Engine struct {
	source DeadlineSource
	firer  DeadlineFirer
	clock  clockwork.Clock
	cfg    EngineConfig
	wakeCh chan struct{}
}

func NewEngine(source DeadlineSource, firer DeadlineFirer, clock clockwork.Clock, cfg EngineConfig) *Engine {
	return &Engine{
		source: source,
		firer:  firer,
		clock:  clock,
		cfg:    cfg,
		wakeCh: make(chan struct{}, 1),
	}
}

// Wake interrupts the current sleep so the engine re-reads the earliest
// deadline. Safe to call from any goroutine; extra wakes coalesce.
func (e *Engine) Wake() {
	select {
	case e.wakeCh <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled, driving every live auction's
// countdown.
func (e *Engine) Run(ctx context.Context) error {
	log.Info().Dur("idle_poll", e.cfg.IdlePoll).Msg("auction engine started")

	timer := e.clock.NewTimer(e.cfg.IdlePoll)
	defer timer.Stop()

	for {
		auctionID, deadline, err := e.source.NextDeadline(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			timer.Reset(e.cfg.IdlePoll)
		case err != nil:
			log.Error().Err(err).Msg("fetch next deadline")
			timer.Reset(e.cfg.RetryDelay)
		default:
			wait := deadline.Sub(e.clock.Now())
			if wait <= 0 {
				if err := e.firer.FireDeadline(ctx, auctionID); err != nil {
					if errors.Is(err, ErrLockContended) {
						// Another writer beat us to the row; re-read.
						continue
					}
					log.Error().Err(err).Int64("auction_id", auctionID).Msg("fire deadline")
					timer.Reset(e.cfg.RetryDelay)
					break
				}
				continue
			}
			timer.Reset(wait)
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("auction engine stopping")
			return ctx.Err()
		case <-e.wakeCh:
		case <-timer.Chan():
		}
	}
}
