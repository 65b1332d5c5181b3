package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/currency"
)

const envPrefix = "STOREFRONT"

type Config struct {
	HTTP         HTTPConfig         `mapstructure:"http"`
	Backend      BackendConfig      `mapstructure:"backend"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Session      SessionConfig      `mapstructure:"session"`
	Checkout     CheckoutConfig     `mapstructure:"checkout"`
	Booking      BookingConfig      `mapstructure:"booking"`
	Prescription PrescriptionConfig `mapstructure:"prescription"`
	Log          LogConfig          `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	SecureCookies   bool          `mapstructure:"secure_cookies"`
}

type BackendConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     uint64        `mapstructure:"max_retries"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`
}

type CacheConfig struct {
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
}

type SessionConfig struct {
	CookieName  string        `mapstructure:"cookie_name"`
	MaxSessions int           `mapstructure:"max_sessions"`
	TTL         time.Duration `mapstructure:"ttl"`
}

type CheckoutConfig struct {
	DefaultCountry string `mapstructure:"default_country"`
	Currency       string `mapstructure:"currency"`
}

type BookingConfig struct {
	Location string `mapstructure:"location"`
}

type PrescriptionConfig struct {
	MaxImageBytes int64 `mapstructure:"max_image_bytes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional .env file, an optional
// config.yaml in dir (or /etc/storefront) and STOREFRONT_* environment
// variables, in increasing order of precedence.
func Load(dir string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("godotenv.Load: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath("/etc/storefront")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("v.ReadInConfig: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("v.Unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Backend.BaseURL == "" {
		errs = append(errs, errors.New("backend.base_url is empty"))
	}
	if c.Backend.RateLimit <= 0 {
		errs = append(errs, errors.New("backend.rate_limit must be positive"))
	}
	if c.Cache.Size <= 0 {
		errs = append(errs, errors.New("cache.size must be positive"))
	}
	if c.Session.MaxSessions <= 0 {
		errs = append(errs, errors.New("session.max_sessions must be positive"))
	}
	if _, err := currency.ParseISO(c.Checkout.Currency); err != nil {
		errs = append(errs, fmt.Errorf("checkout.currency[%s] is not valid: %w", c.Checkout.Currency, err))
	}
	if _, err := time.LoadLocation(c.Booking.Location); err != nil {
		errs = append(errs, fmt.Errorf("booking.location[%s] is not valid: %w", c.Booking.Location, err))
	}

	return errors.Join(errs...)
}

// Currency returns the parsed checkout currency. Validate guarantees it parses.
func (c Config) Currency() currency.Unit {
	unit, _ := currency.ParseISO(c.Checkout.Currency)
	return unit
}

// Location returns the time zone lab appointments are booked in.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Booking.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "30s")
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("http.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("http.secure_cookies", false)

	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.timeout", "10s")
	v.SetDefault("backend.max_retries", 3)
	v.SetDefault("backend.initial_backoff", "200ms")
	v.SetDefault("backend.rate_limit", 20.0)
	v.SetDefault("backend.rate_burst", 40)

	v.SetDefault("cache.size", 512)
	v.SetDefault("cache.ttl", "1m")

	v.SetDefault("session.cookie_name", "sf_session")
	v.SetDefault("session.max_sessions", 10000)
	v.SetDefault("session.ttl", "2h")

	v.SetDefault("checkout.default_country", "India")
	v.SetDefault("checkout.currency", "INR")

	v.SetDefault("booking.location", "Asia/Kolkata")

	v.SetDefault("prescription.max_image_bytes", 10<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
