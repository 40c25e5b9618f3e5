package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nbbluestudios/crickbid/internal/api"
	"github.com/nbbluestudios/crickbid/internal/auction"
	"github.com/nbbluestudios/crickbid/internal/config"
	"github.com/nbbluestudios/crickbid/internal/database"
	"github.com/nbbluestudios/crickbid/internal/gateway"
	"github.com/nbbluestudios/crickbid/internal/managers"
	"github.com/nbbluestudios/crickbid/internal/players"
	"github.com/nbbluestudios/crickbid/internal/round2"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the auction API, websocket gateway, and countdown engine",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	applyLogLevel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Server.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
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

	managerRepo := managers.NewRepository(db.Bun)
	playerRepo := players.NewRepository(db.Bun)
	auctionRepo := auction.NewRepository(db.Bun)

	clock := clockwork.NewRealClock()
	auctionSvc := auction.NewService(auctionRepo, playerRepo, managerRepo, cfg.Auction, clock)
	round2Svc := round2.NewService(db.Bun, auctionRepo, playerRepo)

	engine := auction.NewEngine(auctionRepo, auctionSvc, clock, auction.DefaultEngineConfig())
	auctionSvc.SetWake(engine.Wake)

	connManager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	consumer, err := gateway.NewEventConsumer(nc, connManager, gateway.DefaultConsumerConfig())
	if err != nil {
		return err
	}

	server := api.NewServer(api.Config{
		DB:             db,
		Managers:       managerRepo,
		Auctions:       auctionSvc,
		Round2:         round2Svc,
		Gateway:        connManager,
		JWTSecret:      cfg.Server.JWTSecret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Router(cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 3)
	go func() {
		if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
	go connManager.Run(ctx)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
		log.Error().Err(err).Msg("component failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warn().Err(shutdownErr).Msg("http shutdown")
	}
	return err
}

func applyLogLevel() {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
