package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CRICKBID_SETTINGS", "")
	t.Setenv("HTTP_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, 30, cfg.Auction.BidWindowSeconds)
	require.Equal(t, 5, cfg.Auction.SettleDisplaySeconds)
	require.Equal(t, int64(1000), cfg.Auction.StartingBudget)
	require.Equal(t, 30*time.Second, cfg.Auction.BidWindow())
	require.Equal(t, 5*time.Second, cfg.Auction.SettleDisplay())
}

func TestLoadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"bid_window_seconds: 45\nsettle_display_seconds: 10\nstarting_budget: 2000\n",
	), 0o644))
	t.Setenv("CRICKBID_SETTINGS", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 45, cfg.Auction.BidWindowSeconds)
	require.Equal(t, 10, cfg.Auction.SettleDisplaySeconds)
	require.Equal(t, int64(2000), cfg.Auction.StartingBudget)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bid_window_seconds: 0\n"), 0o644))
	t.Setenv("CRICKBID_SETTINGS", path)

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsNonPositiveBudget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("starting_budget: -5\n"), 0o644))
	t.Setenv("CRICKBID_SETTINGS", path)

	_, err := Load()
	require.Error(t, err)
}
