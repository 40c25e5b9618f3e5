// Package config loads service settings from the environment and an
// optional YAML settings file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Auction holds the tunable auction rules. Values not present in the
// settings file keep their defaults.
type Auction struct {
	BidWindowSeconds     int   `yaml:"bid_window_seconds"`
	SettleDisplaySeconds int   `yaml:"settle_display_seconds"`
	StartingBudget       int64 `yaml:"starting_budget"`
}

// Server holds HTTP and bus settings.
type Server struct {
	Addr           string
	NATSURL        string
	JWTSecret      string
	AllowedOrigins []string
}

// Config is the full service configuration.
type Config struct {
	Server  Server
	Auction Auction
}

// DefaultAuction matches the original tournament rules.
func DefaultAuction() Auction {
	return Auction{
		BidWindowSeconds:     30,
		SettleDisplaySeconds: 5,
		StartingBudget:       1000,
	}
}

// Load reads .env (if present), environment variables, and the optional
// auction settings file named by CRICKBID_SETTINGS.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment")
	}

	cfg := Config{
		Server: Server{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			NATSURL:        getEnv("NATS_URL", "nats://localhost:4222"),
			JWTSecret:      getEnv("JWT_SECRET", ""),
			AllowedOrigins: []string{getEnv("CORS_ORIGIN", "*")},
		},
		Auction: DefaultAuction(),
	}

	if path := os.Getenv("CRICKBID_SETTINGS"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read settings file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg.Auction); err != nil {
			return Config{}, fmt.Errorf("parse settings file: %w", err)
		}
	}

	if cfg.Auction.BidWindowSeconds <= 0 || cfg.Auction.SettleDisplaySeconds <= 0 {
		return Config{}, fmt.Errorf("auction windows must be positive")
	}
	if cfg.Auction.StartingBudget <= 0 {
		return Config{}, fmt.Errorf("starting budget must be positive")
	}

	return cfg, nil
}

// BidWindow returns the bid countdown as a duration.
func (a Auction) BidWindow() time.Duration {
	return time.Duration(a.BidWindowSeconds) * time.Second
}

// SettleDisplay returns the sold/unsold display window as a duration.
func (a Auction) SettleDisplay() time.Duration {
	return time.Duration(a.SettleDisplaySeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// GetEnvAsInt reads an integer env var with a fallback.
func GetEnvAsInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
