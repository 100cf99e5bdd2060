package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
storage_path: "postgres://localhost/booking"
video:
  token_secret: "s3cret"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 4, cfg.Booking.HorizonDays)
	assert.Equal(t, 30*time.Minute, cfg.Booking.SlotDuration)
	assert.Equal(t, 2*time.Minute, cfg.Booking.JoinWindow)
	assert.Equal(t, time.UTC, cfg.Booking.Location())
	assert.Equal(t, time.Minute, cfg.Sweep.Interval)
	assert.False(t, cfg.Sweep.Disabled)
}

func TestLoadRejectsBadSlotDuration(t *testing.T) {
	path := writeConfig(t, `
storage_path: "postgres://localhost/booking"
booking:
  slot_duration: -5m
video:
  token_secret: "s3cret"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot_duration")
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	path := writeConfig(t, `
storage_path: "postgres://localhost/booking"
booking:
  timezone: "Mars/Olympus"
video:
  token_secret: "s3cret"
`)

	_, err := Load(path)
	require.Error(t, err)
}
