package gateway

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestConnection(auctionID, managerID int64) *Connection {
	return &Connection{
		ID:          fmt.Sprintf("conn-%d-%d", auctionID, managerID),
		ManagerID:   managerID,
		AuctionID:   auctionID,
		Send:        make(chan []byte, 8),
		ConnectedAt: time.Now(),
	}
}

func TestBroadcastReachesAuctionPool(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := newTestConnection(1, 10)
	b := newTestConnection(1, 11)
	other := newTestConnection(2, 12)
	cm.register(a)
	cm.register(b)
	cm.register(other)

	require.Equal(t, 2, cm.ConnectionCount(1))
	require.Equal(t, 1, cm.ConnectionCount(2))

	go cm.Run(ctx)
	require.NoError(t, cm.BroadcastToAuction(1, []byte(`{"event_type":"BidPlaced"}`)))

	for _, conn := range []*Connection{a, b} {
		select {
		case data := <-conn.Send:
			require.JSONEq(t, `{"event_type":"BidPlaced"}`, string(data))
		case <-time.After(time.Second):
			t.Fatalf("connection %s received nothing", conn.ID)
		}
	}

	select {
	case <-other.Send:
		t.Fatal("connection on another auction received the event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnregisterRemovesConnection(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())

	conn := newTestConnection(1, 10)
	cm.register(conn)
	require.Equal(t, 1, cm.ConnectionCount(1))

	cm.unregister(conn)
	require.Zero(t, cm.ConnectionCount(1))

	// Idempotent: a second unregister must not panic on the closed channel.
	cm.unregister(conn)
}

// Disconnects racing a broadcast must not panic the delivery loop:
// deliver holds the lock, so it never sends on a channel unregister
// already closed.
func TestDeliverSurvivesConcurrentDisconnects(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())

	conns := make([]*Connection, 0, 32)
	for i := 0; i < 32; i++ {
		conn := newTestConnection(1, int64(100+i))
		// Zero buffer so every send hits the slow-consumer path.
		conn.Send = make(chan []byte)
		cm.register(conn)
		conns = append(conns, conn)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, conn := range conns {
			cm.unregister(conn)
		}
	}()

	for i := 0; i < 100; i++ {
		cm.deliver(broadcast{auctionID: 1, data: []byte("x")})
	}
	<-done

	require.Zero(t, cm.ConnectionCount(1))
}

func TestBroadcastQueueFull(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())

	// Without a running manager the queue eventually fills.
	var err error
	for i := 0; i < cap(cm.broadcastCh)+1; i++ {
		err = cm.BroadcastToAuction(1, []byte("x"))
	}
	require.Error(t, err)
}
