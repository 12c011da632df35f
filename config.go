package trackAdmin

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides applied by LoadConfig.
const (
	EnvAPIURL    = "TRACKADMIN_API_URL"
	EnvLogLevel  = "TRACKADMIN_LOG_LEVEL"
	EnvRedisAddr = "TRACKADMIN_REDIS_ADDR"
	EnvStoreDir  = "TRACKADMIN_STORE_DIR"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageBadger = "badger"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Monitor MonitorConfig `yaml:"monitor"`
	Storage StorageConfig `yaml:"storage"`
	Notice  NoticeConfig  `yaml:"notice"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

/*
====================================
API CONFIG
====================================
*/

type APIConfig struct {
	BaseURL          string        `yaml:"base_url"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxResponseBytes int64         `yaml:"max_response_bytes"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls token expiry handling.
type SessionConfig struct {
	// ExpiryMargin treats an access token as expired this long before its exp claim.
	ExpiryMargin time.Duration `yaml:"expiry_margin"`
}

/*
====================================
MONITOR CONFIG
====================================
*/

type MonitorConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig selects the durable key-value backend for the session pair.
type StorageConfig struct {
	Backend     string `yaml:"backend"` // "memory" (default), "redis", "badger"
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
	Path        string `yaml:"path"`
}

/*
====================================
NOTICE / METRICS / LOG CONFIG
====================================
*/

type NoticeConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:          "http://localhost:8080",
			Timeout:          8 * time.Second,
			MaxResponseBytes: 2 << 20,
		},
		Session: SessionConfig{
			ExpiryMargin: 60 * time.Second,
		},
		Monitor: MonitorConfig{
			Enabled:  true,
			Interval: 5 * time.Minute,
		},
		Storage: StorageConfig{
			Backend:     StorageMemory,
			RedisPrefix: "ta",
		},
		Notice: NoticeConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig, applies environment
// overrides and validates the result. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIURL); ok && strings.TrimSpace(v) != "" {
		c.API.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		c.Log.Level = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvRedisAddr); ok && strings.TrimSpace(v) != "" {
		c.Storage.Backend = StorageRedis
		c.Storage.RedisAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvStoreDir); ok && strings.TrimSpace(v) != "" {
		c.Storage.Backend = StorageBadger
		c.Storage.Path = strings.TrimSpace(v)
	}
}

func (c *Config) Validate() error {
	// API
	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		return errors.New("API BaseURL must be set")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("API BaseURL is invalid: %q", base)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("API BaseURL scheme must be http or https")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API Timeout must be > 0")
	}
	if c.API.MaxResponseBytes <= 0 {
		return errors.New("API MaxResponseBytes must be > 0")
	}

	// Session
	if c.Session.ExpiryMargin < 0 {
		return errors.New("Session ExpiryMargin must be >= 0")
	}

	// Monitor
	if c.Monitor.Enabled && c.Monitor.Interval <= 0 {
		return errors.New("Monitor Interval must be > 0 when the monitor is enabled")
	}

	// Storage
	switch c.Storage.Backend {
	case StorageMemory:
	case StorageRedis:
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			return errors.New("redis storage requires RedisAddr")
		}
	case StorageBadger:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return errors.New("badger storage requires Path")
		}
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}

	// Notices
	if c.Notice.Enabled && c.Notice.BufferSize <= 0 {
		return errors.New("Notice BufferSize must be > 0 when notices are enabled")
	}

	return nil
}
