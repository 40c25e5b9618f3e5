// Package gateway fans realtime auction events out to websocket clients.
package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Connection is one websocket client subscribed to an auction.
type Connection struct {
	ID          string
	ManagerID   int64
	AuctionID   int64
	Conn        *websocket.Conn
	Send        chan []byte
	ConnectedAt time.Time
}

// ConnectionConfig tunes websocket timeouts.
type ConnectionConfig struct {
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
}

// DefaultConnectionConfig returns production defaults.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 1024,
	}
}

type broadcast struct {
	auctionID int64
	data      []byte
}

// ConnectionManager tracks connections per auction and broadcasts
// events to them.
type ConnectionManager struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	byAuction   map[int64]map[string]*Connection

	broadcastCh chan broadcast
	cfg         ConnectionConfig
}

func NewConnectionManager(cfg ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*Connection),
		byAuction:   make(map[int64]map[string]*Connection),
		broadcastCh: make(chan broadcast, 1000),
		cfg:         cfg,
	}
}

// Run drains the broadcast channel until ctx is cancelled.
func (cm *ConnectionManager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			cm.closeAll()
			return
		case b := <-cm.broadcastCh:
			cm.deliver(b)
		}
	}
}

// HandleConnection registers the websocket and pumps it until the
// client disconnects. Blocks for the lifetime of the connection.
func (cm *ConnectionManager) HandleConnection(ctx context.Context, ws *websocket.Conn, auctionID, managerID int64) {
	conn := &Connection{
		ID:          uuid.NewString(),
		ManagerID:   managerID,
		AuctionID:   auctionID,
		Conn:        ws,
		Send:        make(chan []byte, 256),
		ConnectedAt: time.Now(),
	}

	cm.register(conn)
	defer cm.unregister(conn)

	go cm.writePump(conn)
	cm.readPump(ctx, conn)
}

// BroadcastToAuction queues data for every connection watching the
// auction. Drops the event if the queue is full rather than blocking
// the caller.
func (cm *ConnectionManager) BroadcastToAuction(auctionID int64, data []byte) error {
	select {
	case cm.broadcastCh <- broadcast{auctionID: auctionID, data: data}:
		return nil
	default:
		return fmt.Errorf("broadcast queue full, dropping event for auction %d", auctionID)
	}
}

// ConnectionCount reports how many clients watch the auction.
func (cm *ConnectionManager) ConnectionCount(auctionID int64) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.byAuction[auctionID])
}

func (cm *ConnectionManager) register(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[conn.ID] = conn
	if cm.byAuction[conn.AuctionID] == nil {
		cm.byAuction[conn.AuctionID] = make(map[string]*Connection)
	}
	cm.byAuction[conn.AuctionID][conn.ID] = conn

	log.Info().
		Str("connection_id", conn.ID).
		Int64("auction_id", conn.AuctionID).
		Int64("manager_id", conn.ManagerID).
		Int("auction_connections", len(cm.byAuction[conn.AuctionID])).
		Msg("websocket connected")
}

func (cm *ConnectionManager) unregister(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.unregisterLocked(conn)
}

// unregisterLocked removes the connection and closes its send channel.
// Caller holds cm.mu.
func (cm *ConnectionManager) unregisterLocked(conn *Connection) {
	if _, ok := cm.connections[conn.ID]; !ok {
		return
	}
	delete(cm.connections, conn.ID)
	if pool := cm.byAuction[conn.AuctionID]; pool != nil {
		delete(pool, conn.ID)
		if len(pool) == 0 {
			delete(cm.byAuction, conn.AuctionID)
		}
	}
	close(conn.Send)

	log.Info().
		Str("connection_id", conn.ID).
		Int64("auction_id", conn.AuctionID).
		Msg("websocket disconnected")
}

// deliver sends under the write lock so a concurrent unregister cannot
// close a Send channel between membership check and send. Sends are
// non-blocking, so holding the lock costs at most one channel op per
// connection.
func (cm *ConnectionManager) deliver(b broadcast) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for _, c := range cm.byAuction[b.auctionID] {
		select {
		case c.Send <- b.data:
		default:
			// Slow consumer; drop the connection rather than the event
			// stream for everyone else.
			log.Warn().Str("connection_id", c.ID).Msg("send buffer full, closing connection")
			cm.unregisterLocked(c)
			if c.Conn != nil {
				c.Conn.Close()
			}
		}
	}
}

func (cm *ConnectionManager) writePump(conn *Connection) {
	ticker := time.NewTicker(cm.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(cm.cfg.WriteTimeout))
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(cm.cfg.WriteTimeout))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (cm *ConnectionManager) readPump(ctx context.Context, conn *Connection) {
	defer conn.Conn.Close()

	conn.Conn.SetReadLimit(cm.cfg.MaxMessageSize)
	conn.Conn.SetReadDeadline(time.Now().Add(cm.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(cm.cfg.ReadTimeout))
		return nil
	})

	// Clients never send application messages; the read loop only
	// services control frames and detects disconnects.
	for {
		if ctx.Err() != nil {
			return
		}
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("connection_id", conn.ID).Msg("websocket read error")
			}
			return
		}
	}
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	for id, c := range cm.connections {
		close(c.Send)
		if c.Conn != nil {
			c.Conn.Close()
		}
		delete(cm.connections, id)
	}
	cm.byAuction = make(map[int64]map[string]*Connection)
}
