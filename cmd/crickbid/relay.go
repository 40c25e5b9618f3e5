package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/nbbluestudios/crickbid/internal/config"
	"github.com/nbbluestudios/crickbid/internal/database"
	"github.com/nbbluestudios/crickbid/internal/outbox"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run the outbox relay, publishing auction events to NATS",
	RunE:  runRelay,
}

func init() {
	rootCmd.AddCommand(relayCmd)
}

func runRelay(cmd *cobra.Command, args []string) error {
	applyLogLevel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbCfg := database.ConfigFromEnv()
	db, err := database.New(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	nc, err := nats.Connect(cfg.Server.NATSURL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second))
	if err != nil {
		return err
	}
	defer nc.Drain()

	publisher, err := outbox.NewJetStreamPublisher(ctx, nc, outbox.DefaultJetStreamConfig())
	if err != nil {
		return err
	}

	repo := outbox.NewRepository(db.Bun)
	relay := outbox.NewRelay(repo, publisher, dbCfg.DSN(), outbox.DefaultRelayConfig())

	if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
