package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/nbbluestudios/crickbid/internal/auction/events"
)

// ConsumerConfig configures the JetStream event consumer.
type ConsumerConfig struct {
	StreamName    string
	ConsumerName  string
	FilterSubject string
}

// DefaultConsumerConfig matches the relay's stream settings.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		StreamName:    "AUCTION_EVENTS",
		ConsumerName:  "auction-gateway",
		FilterSubject: "auction.events.>",
	}
}

// EventConsumer bridges the bus to the connection manager: every
// auction event published by the relay is pushed to the sockets
// watching that auction.
type EventConsumer struct {
	js      jetstream.JetStream
	manager *ConnectionManager
	cfg     ConsumerConfig
}

func NewEventConsumer(nc *nats.Conn, manager *ConnectionManager, cfg ConsumerConfig) (*EventConsumer, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}
	return &EventConsumer{js: js, manager: manager, cfg: cfg}, nil
}

// Run consumes events until ctx is cancelled.
func (c *EventConsumer) Run(ctx context.Context) error {
	cons, err := c.js.CreateOrUpdateConsumer(ctx, c.cfg.StreamName, jetstream.ConsumerConfig{
		Durable:       c.cfg.ConsumerName,
		FilterSubject: c.cfg.FilterSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", c.cfg.ConsumerName, err)
	}

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		if err := c.handle(msg.Data()); err != nil {
			log.Error().Err(err).Msg("handle bus event")
			msg.Nak()
			return
		}
		msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	defer cc.Stop()

	log.Info().
		Str("stream", c.cfg.StreamName).
		Str("consumer", c.cfg.ConsumerName).
		Msg("gateway event consumer started")

	<-ctx.Done()
	return ctx.Err()
}

func (c *EventConsumer) handle(data []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	// The envelope goes to clients verbatim; they switch on event_type.
	if err := c.manager.BroadcastToAuction(env.AuctionID, data); err != nil {
		log.Warn().Err(err).Str("event_id", env.EventID).Msg("broadcast dropped")
	}
	return nil
}
