package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "development", cfg.Env)
	require.False(t, cfg.IsProduction())
	require.Equal(t, "3000", cfg.Port)
	require.Equal(t, time.Minute, cfg.MarketPoll)
	require.NotEmpty(t, cfg.StateDir)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("MARKET_POLL_SECONDS", "30")
	t.Setenv("STATE_DIR", "/tmp/s17-test")

	cfg := Load()
	require.True(t, cfg.IsProduction())
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 30*time.Second, cfg.MarketPoll)
	require.Equal(t, "/tmp/s17-test", cfg.StateDir)
}

func TestLoadIgnoresUnparsableInts(t *testing.T) {
	t.Setenv("MARKET_POLL_SECONDS", "soon")

	cfg := Load()
	require.Equal(t, time.Minute, cfg.MarketPoll)
}
