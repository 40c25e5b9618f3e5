package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/nbbluestudios/crickbid/internal/auction/events"
	"github.com/nbbluestudios/crickbid/internal/models"
)

// Publisher delivers outbox events to a message bus.
type Publisher interface {
	Publish(ctx context.Context, ev models.OutboxEvent) error
}

// JetStreamConfig configures the NATS JetStream publisher.
type JetStreamConfig struct {
	StreamName    string
	SubjectPrefix string
	MaxAge        time.Duration
}

// DefaultJetStreamConfig keeps a day of auction events.
func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		StreamName:    "AUCTION_EVENTS",
		SubjectPrefix: "auction.events",
		MaxAge:        24 * time.Hour,
	}
}

// JetStreamPublisher publishes to NATS JetStream with per-event
// message IDs so redelivered outbox rows deduplicate server-side.
type JetStreamPublisher struct {
	js  jetstream.JetStream
	cfg JetStreamConfig
}

// NewJetStreamPublisher connects the jetstream context and ensures the
// stream exists.
func NewJetStreamPublisher(ctx context.Context, nc *nats.Conn, cfg JetStreamConfig) (*JetStreamPublisher, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	p := &JetStreamPublisher{js: js, cfg: cfg}
	if err := p.ensureStream(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *JetStreamPublisher) ensureStream(ctx context.Context) error {
	_, err := p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      p.cfg.StreamName,
		Subjects:  []string{p.cfg.SubjectPrefix + ".>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    p.cfg.MaxAge,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", p.cfg.StreamName, err)
	}
	log.Info().Str("stream", p.cfg.StreamName).Msg("jetstream stream ready")
	return nil
}

// Publish sends one event as an envelope on
// <prefix>.<auction_id>.<event_type>.
func (p *JetStreamPublisher) Publish(ctx context.Context, ev models.OutboxEvent) error {
	env := events.Envelope{
		EventID:   ev.ID,
		EventType: ev.EventType,
		AuctionID: ev.AuctionID,
		Timestamp: ev.CreatedAt,
		Payload:   ev.Payload,
	}
	data, err := events.Marshal(env)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s.%d.%s", p.cfg.SubjectPrefix, ev.AuctionID, ev.EventType)
	_, err = p.js.Publish(ctx, subject, data, jetstream.WithMsgID(ev.ID))
	if err != nil {
		return fmt.Errorf("publish event %s: %w", ev.ID, err)
	}
	return nil
}
