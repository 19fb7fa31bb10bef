package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, time.Second, cfg.Auth.Delay)
	assert.Equal(t, 5.0, cfg.Booking.ServiceFee)
	assert.Equal(t, 10, cfg.Booking.MaxTicketsPerBooking)
	assert.False(t, cfg.Booking.ResetOnLogin)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	yaml := []byte("storage:\n  driver: redis\nauth:\n  delay: 250ms\nbooking:\n  service_fee: 2.5\n")
	require.NoError(t, os.WriteFile(file, yaml, 0o600))

	t.Setenv("EVENTHUB_SERVER_PORT", "9090")

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, 250*time.Millisecond, cfg.Auth.Delay)
	assert.Equal(t, 2.5, cfg.Booking.ServiceFee)
}

func TestLoad_BookingRulesFromEnv(t *testing.T) {
	t.Setenv("EVENTHUB_BOOKING_MAX_TICKETS_PER_BOOKING", "4")
	t.Setenv("EVENTHUB_BOOKING_RESET_ON_LOGIN", "true")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Booking.MaxTicketsPerBooking)
	assert.True(t, cfg.Booking.ResetOnLogin)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("EVENTHUB_STORAGE_DRIVER", "sqlite")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "events", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=events sslmode=disable", c.DSN())
}
