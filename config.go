package goSession

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration of a [Session].
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Refresh RefreshConfig `yaml:"refresh"`
	Audit   AuditConfig   `yaml:"audit"`
	Metrics MetricsConfig `yaml:"metrics"`
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig describes the backend the session talks to.
type APIConfig struct {
	// BaseURL is the prefix for every endpoint path, e.g.
	// "http://localhost:8000/api".
	BaseURL   string        `yaml:"base_url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig names the durable keys for the persisted credential fields.
// Absence of a key in the store means "not previously authenticated".
// KeyPrefix namespaces the keys in stores that share a database with other
// tenants (the Redis store); file and memory stores ignore it.
type StorageConfig struct {
	KeyPrefix       string `yaml:"key_prefix"`
	AccessTokenKey  string `yaml:"access_token_key"`
	RefreshTokenKey string `yaml:"refresh_token_key"`
	UserKey         string `yaml:"user_key"`
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig tunes proactive refresh. ExpiryLeeway is how close to the
// access token's exp claim [Session.ShouldRefresh] starts reporting true.
type RefreshConfig struct {
	ExpiryLeeway time.Duration `yaml:"expiry_leeway"`
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the session event dispatcher.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns the configuration used when the builder is given
// none. The storage key names match the keys the web client historically
// wrote, so a store can be shared across client generations.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000/api",
			UserAgent: "goSession/1",
			Timeout:   30 * time.Second,
		},
		Storage: StorageConfig{
			AccessTokenKey:  "accessToken",
			RefreshTokenKey: "refreshToken",
			UserKey:         "userData",
		},
		Refresh: RefreshConfig{
			ExpiryLeeway: 30 * time.Second,
		},
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults, so partial files
// only override what they name.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		return errors.New("config: api base url required")
	}
	parsed, err := url.Parse(cfg.API.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: invalid api base url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout < 0 {
		return errors.New("config: api timeout must not be negative")
	}
	if cfg.Refresh.ExpiryLeeway < 0 {
		return errors.New("config: refresh expiry leeway must not be negative")
	}
	for _, key := range []string{
		cfg.Storage.AccessTokenKey,
		cfg.Storage.RefreshTokenKey,
		cfg.Storage.UserKey,
	} {
		if strings.TrimSpace(key) == "" {
			return errors.New("config: storage key names required")
		}
	}
	if cfg.Storage.AccessTokenKey == cfg.Storage.RefreshTokenKey ||
		cfg.Storage.AccessTokenKey == cfg.Storage.UserKey ||
		cfg.Storage.RefreshTokenKey == cfg.Storage.UserKey {
		return errors.New("config: storage key names must be distinct")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; clone exists so future reference
	// fields cannot alias caller state.
	return cfg
}
