// Package config loads runtime settings from environment variables, with
// a .env file picked up for local development.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Dima11235813/wellness-clinic-agent/internal/nodes"
)

// Config is the full runtime configuration of the agent.
type Config struct {
	// Port is the HTTP listen port for serve mode.
	Port string `envconfig:"PORT" default:"8080"`

	// RedisURL selects the durable thread store. Empty means the
	// in-memory store (single process, no durability).
	RedisURL string `envconfig:"REDIS_URL"`

	// ThreadTTL bounds how long an idle thread stays resumable.
	ThreadTTL time.Duration `envconfig:"THREAD_TTL" default:"720h"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON  bool   `envconfig:"LOG_JSON" default:"false"`

	// Node tunables.
	RetrievalK           int     `envconfig:"RETRIEVAL_K" default:"5"`
	ValidationConfidence float64 `envconfig:"VALIDATION_CONFIDENCE" default:"0.5"`
	SlotCap              int     `envconfig:"SLOT_CAP" default:"9"`
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("process environment config: %w", err)
	}
	return cfg, nil
}

// Nodes maps the tunables onto the node configuration.
func (c Config) Nodes() nodes.Config {
	return nodes.Config{
		RetrievalK:           c.RetrievalK,
		ValidationConfidence: c.ValidationConfidence,
		SlotCap:              c.SlotCap,
	}
}

// SlogLevel parses the configured log level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
