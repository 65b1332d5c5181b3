package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikolayk812/pharmacy-storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STOREFRONT_BACKEND_BASE_URL", "https://api.example")

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "https://api.example", cfg.Backend.BaseURL)
	assert.Equal(t, uint64(3), cfg.Backend.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.Backend.InitialBackoff)
	assert.Equal(t, 512, cfg.Cache.Size)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "sf_session", cfg.Session.CookieName)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "India", cfg.Checkout.DefaultCountry)
	assert.Equal(t, currency.INR, cfg.Currency())
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
	assert.Equal(t, int64(10<<20), cfg.Prescription.MaxImageBytes)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
backend:
  base_url: https://file.example
  timeout: 3s
  initial_backoff: 50ms
cache:
  size: 64
checkout:
  currency: USD
booking:
  location: UTC
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	t.Setenv("STOREFRONT_CACHE_SIZE", "128")

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://file.example", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Backend.InitialBackoff)
	assert.Equal(t, 128, cfg.Cache.Size, "env overrides file")
	assert.Equal(t, currency.USD, cfg.Currency())
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("STOREFRONT_BACKEND_BASE_URL", "")
	t.Setenv("STOREFRONT_CHECKOUT_CURRENCY", "RUPEES")

	_, err := config.Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorContains(t, err, "backend.base_url is empty")
	assert.ErrorContains(t, err, "checkout.currency[RUPEES] is not valid")
}

func TestValidate(t *testing.T) {
	cfg := config.Config{
		Backend:  config.BackendConfig{BaseURL: "https://api.example", RateLimit: 1},
		Cache:    config.CacheConfig{Size: 1},
		Session:  config.SessionConfig{MaxSessions: 1},
		Checkout: config.CheckoutConfig{Currency: "INR"},
		Booking:  config.BookingConfig{Location: "Asia/Kolkata"},
	}
	require.NoError(t, cfg.Validate())

	cfg.Cache.Size = 0
	cfg.Session.MaxSessions = -1
	cfg.Booking.Location = "Mars/Olympus"

	err := cfg.Validate()
	assert.ErrorContains(t, err, "cache.size must be positive")
	assert.ErrorContains(t, err, "session.max_sessions must be positive")
	assert.ErrorContains(t, err, "booking.location[Mars/Olympus] is not valid")
}
