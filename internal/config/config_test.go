package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "gambit_events", cfg.EventChannel)
	assert.Equal(t, "gambit_settlements", cfg.SettlementQueue)
	assert.Equal(t, 72*time.Hour, cfg.TokenExpire)
	assert.Equal(t, time.Second, cfg.SweepInterval)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SWEEP_INTERVAL", "250ms")

	cfg := Load()
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 250*time.Millisecond, cfg.SweepInterval)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("PING_INTERVAL", "soon")

	cfg := Load()
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.PingInterval)
}
