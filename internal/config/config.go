// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Fields are populated from environment variables.
type Config struct {
	// Server settings
	Port            int           `env:"PORT" envDefault:"8080"`
	Env             string        `env:"ENV" envDefault:"development"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Timezone        string        `env:"TIMEZONE" envDefault:"UTC"`     // zone "today" is computed in
	TrustProxy      bool          `env:"TRUST_PROXY" envDefault:"false"` // rate-limit by X-Forwarded-For

	// Database
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/inzalo.db"`

	// Authentication
	AdminAPIKey string `env:"ADMIN_API_KEY"`

	// Cache; an empty RedisURL selects the in-memory cache
	RedisURL        string        `env:"REDIS_URL"`
	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"1h"`
	CacheMaxEntries int           `env:"CACHE_MAX_ENTRIES" envDefault:"10000"`

	// Rate limiting (per client IP)
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"LOG_FILE"` // optional rotated log file

	loc *time.Location
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Load reads configuration from environment variables.
// In development, it first loads from .env file if present.
func Load() (*Config, error) {
	// Missing .env is fine; production sets env vars directly
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	if c.DatabasePath == "" {
		errs = append(errs, errors.New("DATABASE_PATH is required"))
	}

	// Admin endpoints stay closed without a key, but production must have one
	if c.IsProduction() && c.AdminAPIKey == "" {
		errs = append(errs, errors.New("ADMIN_API_KEY is required in production"))
	}

	if loc, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE %q is not a valid IANA zone: %w", c.Timezone, err))
	} else {
		c.loc = loc
	}

	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL))
	}

	if c.CacheMaxEntries < 1 {
		errs = append(errs, fmt.Errorf("CACHE_MAX_ENTRIES must be positive, got %d", c.CacheMaxEntries))
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive, got %v/%d",
			c.RateLimitRPS, c.RateLimitBurst))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Location returns the zone resolved by Validate, or UTC before that.
func (c *Config) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}
