package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/mkessler/sqlrun/security"
)

// Config is the full runner configuration.
type Config struct {
	Database   DatabaseConfig   `json:"database"`
	Security   security.Config  `json:"security"`
	Resilience ResilienceConfig `json:"resilience"`
	Logging    LoggingConfig    `json:"logging"`

	// Notes lists out-of-range values Load pulled back to their defaults.
	Notes []string `json:"-"`
}

// DatabaseConfig describes the target store and pool limits.
type DatabaseConfig struct {
	URL                string `json:"url"`
	MaxOpenConns       int    `json:"max_open_conns"`
	MaxIdleConns       int    `json:"max_idle_conns"`
	ConnMaxLifetimeSec int    `json:"conn_max_lifetime_seconds"`
	ConnectTimeoutSec  int    `json:"connect_timeout_seconds"`
}

// ConnMaxLifetime returns the pool lifetime as a duration.
func (database DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(database.ConnMaxLifetimeSec) * time.Second
}

// ConnectTimeout returns the connect timeout as a duration.
func (database DatabaseConfig) ConnectTimeout() time.Duration {
	return time.Duration(database.ConnectTimeoutSec) * time.Second
}

// ResilienceConfig tunes the circuit breaker and retry policies guarding
// batch execution.
type ResilienceConfig struct {
	FailureThreshold   int     `json:"failure_threshold"`
	RecoveryTimeoutSec int     `json:"recovery_timeout_seconds"`
	MaxAttempts        int     `json:"max_attempts"`
	BaseDelayMS        int     `json:"base_delay_ms"`
	MaxDelayMS         int     `json:"max_delay_ms"`
	ExponentialBase    float64 `json:"exponential_base"`
	Jitter             bool    `json:"jitter"`
}

// RecoveryTimeout returns the breaker recovery timeout as a duration.
func (resilience ResilienceConfig) RecoveryTimeout() time.Duration {
	return time.Duration(resilience.RecoveryTimeoutSec) * time.Second
}

// BaseDelay returns the first retry delay as a duration.
func (resilience ResilienceConfig) BaseDelay() time.Duration {
	return time.Duration(resilience.BaseDelayMS) * time.Millisecond
}

// MaxDelay returns the retry delay cap as a duration.
func (resilience ResilienceConfig) MaxDelay() time.Duration {
	return time.Duration(resilience.MaxDelayMS) * time.Millisecond
}

// LoggingConfig controls log verbosity and output shape.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// NewLogger builds a structured logger writing to w.
func (logging LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	options := &slog.HandlerOptions{Level: level}
	if logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, options))
	}
	return slog.New(slog.NewTextHandler(w, options))
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL:                "sqlite://:memory:",
			MaxOpenConns:       8,
			MaxIdleConns:       2,
			ConnMaxLifetimeSec: 1800,
			ConnectTimeoutSec:  10,
		},
		Security: security.DefaultConfig(),
		Resilience: ResilienceConfig{
			FailureThreshold:   5,
			RecoveryTimeoutSec: 60,
			MaxAttempts:        3,
			BaseDelayMS:        1000,
			MaxDelayMS:         30000,
			ExponentialBase:    2.0,
			Jitter:             true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds a configuration from defaults, then SQLRUN_* environment
// variables, then the JSON file at path if one is given. The file wins over
// the environment; callers layer their own flag overrides on top.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.applyEnv()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Notes = cfg.clamp()
	return cfg, nil
}

// clamp pulls out-of-range values back to their defaults and reports what
// it changed.
func (cfg *Config) clamp() []string {
	defaults := Default()
	var notes []string

	reset := func(field string, value *int, fallback int) {
		if *value < 0 {
			notes = append(notes, fmt.Sprintf("%s %d is out of range, using %d", field, *value, fallback))
			*value = fallback
		}
	}
	reset("database.max_open_conns", &cfg.Database.MaxOpenConns, defaults.Database.MaxOpenConns)
	reset("database.max_idle_conns", &cfg.Database.MaxIdleConns, defaults.Database.MaxIdleConns)
	reset("database.conn_max_lifetime_seconds", &cfg.Database.ConnMaxLifetimeSec, defaults.Database.ConnMaxLifetimeSec)
	reset("database.connect_timeout_seconds", &cfg.Database.ConnectTimeoutSec, defaults.Database.ConnectTimeoutSec)
	reset("resilience.failure_threshold", &cfg.Resilience.FailureThreshold, defaults.Resilience.FailureThreshold)
	reset("resilience.recovery_timeout_seconds", &cfg.Resilience.RecoveryTimeoutSec, defaults.Resilience.RecoveryTimeoutSec)
	reset("resilience.max_attempts", &cfg.Resilience.MaxAttempts, defaults.Resilience.MaxAttempts)
	reset("resilience.base_delay_ms", &cfg.Resilience.BaseDelayMS, defaults.Resilience.BaseDelayMS)
	reset("resilience.max_delay_ms", &cfg.Resilience.MaxDelayMS, defaults.Resilience.MaxDelayMS)

	if cfg.Resilience.ExponentialBase <= 1 {
		notes = append(notes, fmt.Sprintf("resilience.exponential_base %.2f is out of range, using %.2f",
			cfg.Resilience.ExponentialBase, defaults.Resilience.ExponentialBase))
		cfg.Resilience.ExponentialBase = defaults.Resilience.ExponentialBase
	}

	return notes
}

// applyEnv overlays the supported SQLRUN_* variables.
func (cfg *Config) applyEnv() {
	if url := os.Getenv("SQLRUN_DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if level := os.Getenv("SQLRUN_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("SQLRUN_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}
	if raw := os.Getenv("SQLRUN_MAX_OPEN_CONNS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.Database.MaxOpenConns = n
		}
	}
	if raw := os.Getenv("SQLRUN_MAX_ATTEMPTS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.Resilience.MaxAttempts = n
		}
	}
}
