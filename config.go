package sessiongate

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config defines a public type used by sessiongate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Session SessionConfig `yaml:"session"`
	Events  EventsConfig  `yaml:"events"`
	Metrics MetricsConfig `yaml:"metrics"`
}

/*
====================================
BACKEND CONFIG
====================================
*/

// BackendConfig defines a public type used by sessiongate APIs.
//
// BackendConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url" env:"AWQEF_API_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"AWQEF_API_TIMEOUT" env-default:"15s"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by sessiongate APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// AccessTTL and RefreshTTL are conventions mirrored from the backend;
	// they size cookie lifetimes and storage TTLs, not token validity.
	AccessTTL  time.Duration `yaml:"access_ttl" env:"AWQEF_ACCESS_TTL" env-default:"1h"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env:"AWQEF_REFRESH_TTL" env-default:"168h"`

	// RefreshInterval is the cadence of the silent background refresh.
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"AWQEF_REFRESH_INTERVAL" env-default:"15m"`

	// MinAuthCheckInterval debounces CheckAuth: calls arriving within the
	// window short-circuit to the cached state without a backend round trip.
	MinAuthCheckInterval time.Duration `yaml:"min_auth_check_interval" env:"AWQEF_MIN_AUTH_CHECK_INTERVAL" env-default:"5s"`
}

/*
====================================
EVENTS CONFIG
====================================
*/

// EventsConfig defines a public type used by sessiongate APIs.
//
// EventsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EventsConfig struct {
	Enabled    bool `yaml:"enabled" env:"AWQEF_EVENTS_ENABLED" env-default:"false"`
	BufferSize int  `yaml:"buffer_size" env:"AWQEF_EVENTS_BUFFER" env-default:"1024"`
	DropIfFull bool `yaml:"drop_if_full" env:"AWQEF_EVENTS_DROP_IF_FULL" env-default:"true"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by sessiongate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled" env:"AWQEF_METRICS_ENABLED" env-default:"false"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms" env:"AWQEF_METRICS_LATENCY" env-default:"false"`
}

func defaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			Timeout: 15 * time.Second,
		},
		Session: SessionConfig{
			AccessTTL:            time.Hour,
			RefreshTTL:           7 * 24 * time.Hour,
			RefreshInterval:      15 * time.Minute,
			MinAuthCheckInterval: 5 * time.Second,
		},
		Events: EventsConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func validateConfig(cfg Config) error {
	if cfg.Backend.BaseURL != "" {
		u, err := url.Parse(cfg.Backend.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid backend base URL %q", cfg.Backend.BaseURL)
		}
	}
	if cfg.Backend.Timeout < 0 {
		return errors.New("backend timeout must not be negative")
	}
	if cfg.Session.RefreshInterval <= 0 {
		return errors.New("refresh interval must be positive")
	}
	if cfg.Session.MinAuthCheckInterval < 0 {
		return errors.New("min auth check interval must not be negative")
	}
	if cfg.Session.AccessTTL <= 0 || cfg.Session.RefreshTTL <= 0 {
		return errors.New("session TTLs must be positive")
	}
	if cfg.Session.RefreshTTL < cfg.Session.AccessTTL {
		return errors.New("refresh TTL must not be shorter than access TTL")
	}
	if cfg.Events.Enabled && cfg.Events.BufferSize <= 0 {
		return errors.New("events buffer size must be positive when events are enabled")
	}
	return nil
}

// LoadConfig reads configuration from the YAML file at path, then overlays
// environment variables. An empty path skips the file and reads environment
// only.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read config from env: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// MustLoadConfig is [LoadConfig] with a panic on error, for program mains
// where a broken configuration is unrecoverable.
func MustLoadConfig(path string) Config {
	cfg, err := LoadConfig(path)
	if err != nil {
		panic(err)
	}
	return cfg
}
