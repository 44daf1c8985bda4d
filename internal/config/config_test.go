package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("SLOT_STEP_MINUTES", "")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 15, cfg.SlotStepMinutes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("BOOKING_WINDOW_DAYS", "not-a-number")
	t.Setenv("ENV", "production")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 30, cfg.BookingWindowDays)
	assert.True(t, cfg.IsProduction())
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}
