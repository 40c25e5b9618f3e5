package auction

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

// stubDeadlines serves scripted deadlines and records firings.
type stubDeadlines struct {
	mu       sync.Mutex
	deadline time.Time
	pending  bool
	fired    []int64
}

func (s *stubDeadlines) NextDeadline(ctx context.Context) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending {
		return 0, time.Time{}, sql.ErrNoRows
	}
	return 1, s.deadline, nil
}

func (s *stubDeadlines) FireDeadline(ctx context.Context, auctionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fired = append(s.fired, auctionID)
	s.pending = false
	return nil
}

func (s *stubDeadlines) schedule(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadline = at
	s.pending = true
}

func (s *stubDeadlines) firedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fired)
}

func newTestEngine(stub *stubDeadlines, clock clockwork.Clock) *Engine {
	return NewEngine(stub, stub, clock, EngineConfig{
		IdlePoll:   5 * time.Second,
		RetryDelay: time.Second,
	})
}

func TestEngineFiresWhenDeadlineElapses(t *testing.T) {
	clock := clockwork.NewFakeClock()
	stub := &stubDeadlines{}
	stub.schedule(clock.Now().Add(30 * time.Second))

	engine := newTestEngine(stub, clock)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	clock.BlockUntil(1)
	require.Zero(t, stub.firedCount())

	clock.Advance(30 * time.Second)
	require.Eventually(t, func() bool {
		return stub.firedCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestEngineDoesNotFireEarly(t *testing.T) {
	clock := clockwork.NewFakeClock()
	stub := &stubDeadlines{}
	stub.schedule(clock.Now().Add(30 * time.Second))

	engine := newTestEngine(stub, clock)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	clock.BlockUntil(1)
	clock.Advance(29 * time.Second)

	require.Never(t, func() bool {
		return stub.firedCount() > 0
	}, 100*time.Millisecond, 5*time.Millisecond)
}

func TestEngineWakeObservesEarlierDeadline(t *testing.T) {
	clock := clockwork.NewFakeClock()
	stub := &stubDeadlines{}
	stub.schedule(clock.Now().Add(5 * time.Minute))

	engine := newTestEngine(stub, clock)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	clock.BlockUntil(1)

	// A bid moved the deadline to right now; wake the engine to re-read
	// so it fires without waiting out the stale five-minute timer.
	stub.schedule(clock.Now())
	engine.Wake()

	require.Eventually(t, func() bool {
		return stub.firedCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestEngineIdlesWithNothingScheduled(t *testing.T) {
	clock := clockwork.NewFakeClock()
	stub := &stubDeadlines{}

	engine := newTestEngine(stub, clock)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	clock.BlockUntil(1)
	clock.Advance(5 * time.Second)

	// Still nothing to fire after the idle poll.
	require.Never(t, func() bool {
		return stub.firedCount() > 0
	}, 100*time.Millisecond, 5*time.Millisecond)
}
