// Package config loads the web shell configuration from environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the campus-eats shell.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Backend API. Empty means no backend: the local identity provider
	// serves sign-in and the refresh endpoint in-process.
	APIBaseURL        string `env:"API_BASE_URL" envDefault:""`
	APITimeoutSeconds int    `env:"API_TIMEOUT_SECONDS" envDefault:"30"`

	// Circuit breaker around the backend API transport.
	CircuitBreakerEnabled bool `env:"CIRCUIT_BREAKER_ENABLED" envDefault:"false"`

	// Durable storage backend: memory, redis, or postgres.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`

	// Redis (STORAGE_BACKEND=redis)
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// PostgreSQL (STORAGE_BACKEND=postgres)
	PostgresDSN string `env:"POSTGRES_DSN" envDefault:""`

	// Dev identity provider
	JWTSecret         string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	AccessTTLMinutes  int    `env:"ACCESS_TTL_MINUTES" envDefault:"15"`
	RefreshTTLMinutes int    `env:"REFRESH_TTL_MINUTES" envDefault:"10080"`

	// Rate limiting
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"100"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.StorageBackend {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("unknown storage backend: %q", c.StorageBackend)
	}
	if c.StorageBackend == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required with the postgres backend")
	}
	return nil
}

// APITimeout returns the pipeline timeout as a duration.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

// AccessTTL returns the dev provider access token lifetime.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMinutes) * time.Minute
}

// RefreshTTL returns the dev provider refresh token lifetime.
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLMinutes) * time.Minute
}
