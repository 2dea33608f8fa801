package config

import (
	"os"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Env = %q, want %q", cfg.Env, EnvDevelopment)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, "text")
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("CacheTTL = %s, want 1h", cfg.CacheTTL)
	}
	if cfg.RedisURL != "" {
		t.Errorf("RedisURL = %q, want empty", cfg.RedisURL)
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Location() = %v, want UTC", cfg.Location())
	}
	if cfg.CacheMaxEntries != 10000 {
		t.Errorf("CacheMaxEntries = %d, want 10000", cfg.CacheMaxEntries)
	}
	if cfg.TrustProxy {
		t.Error("TrustProxy = true, want false")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "3000")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_PATH", "/data/test.db")
	t.Setenv("ADMIN_API_KEY", "secret-key-123")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_FILE", "/var/log/inzalo.log")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CACHE_TTL", "15m")
	t.Setenv("CACHE_MAX_ENTRIES", "500")
	t.Setenv("TRUST_PROXY", "true")
	t.Setenv("TIMEZONE", "Africa/Johannesburg")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.Env != EnvProduction {
		t.Errorf("Env = %q, want %q", cfg.Env, EnvProduction)
	}
	if cfg.DatabasePath != "/data/test.db" {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, "/data/test.db")
	}
	if cfg.AdminAPIKey != "secret-key-123" {
		t.Errorf("AdminAPIKey = %q, want %q", cfg.AdminAPIKey, "secret-key-123")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, "json")
	}
	if cfg.LogFile != "/var/log/inzalo.log" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	if cfg.CacheTTL != 15*time.Minute {
		t.Errorf("CacheTTL = %s, want 15m", cfg.CacheTTL)
	}
	if cfg.RateLimitRPS != 2.5 || cfg.RateLimitBurst != 5 {
		t.Errorf("rate limit = %v/%d, want 2.5/5", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.Location().String() != "Africa/Johannesburg" {
		t.Errorf("Location() = %v", cfg.Location())
	}
	if cfg.CacheMaxEntries != 500 || !cfg.TrustProxy {
		t.Errorf("CacheMaxEntries = %d, TrustProxy = %v", cfg.CacheMaxEntries, cfg.TrustProxy)
	}
}

func TestLoad_InvalidNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "eighty")

	if _, err := Load(); err == nil {
		t.Error("Load() with non-numeric PORT succeeded, want error")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:           8080,
			Env:            EnvDevelopment,
			Timezone:       "UTC",
			DatabasePath:   "./data/test.db",
			CacheTTL:        time.Hour,
			CacheMaxEntries: 100,
			RateLimitRPS:    10,
			RateLimitBurst:  20,
			LogLevel:        "info",
			LogFormat:       "text",
		}
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid development config", func(c *Config) {}, false},
		{"valid production config", func(c *Config) {
			c.Env = EnvProduction
			c.AdminAPIKey = "required-in-prod"
		}, false},
		{"production requires admin key", func(c *Config) { c.Env = EnvProduction }, true},
		{"invalid port - too low", func(c *Config) { c.Port = 0 }, true},
		{"invalid port - too high", func(c *Config) { c.Port = 70000 }, true},
		{"invalid environment", func(c *Config) { c.Env = "invalid" }, true},
		{"invalid log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"invalid log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"empty database path", func(c *Config) { c.DatabasePath = "" }, true},
		{"unknown timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true},
		{"zero cache ttl", func(c *Config) { c.CacheTTL = 0 }, true},
		{"zero cache size", func(c *Config) { c.CacheMaxEntries = 0 }, true},
		{"zero rate limit", func(c *Config) { c.RateLimitRPS = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_LocationResolvedByValidate(t *testing.T) {
	cfg := &Config{
		Port:            8080,
		Env:             EnvDevelopment,
		Timezone:        "Africa/Johannesburg",
		DatabasePath:    "./data/test.db",
		CacheTTL:        time.Hour,
		CacheMaxEntries: 100,
		RateLimitRPS:    10,
		RateLimitBurst:  20,
		LogLevel:        "info",
		LogFormat:       "text",
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Location() before Validate = %v, want UTC", cfg.Location())
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	first := cfg.Location()
	if first.String() != "Africa/Johannesburg" {
		t.Errorf("Location() = %v, want Africa/Johannesburg", first)
	}
	if cfg.Location() != first {
		t.Error("Location() resolved the zone again, want the stored *time.Location")
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := &Config{Env: EnvDevelopment}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}

	cfg.Env = EnvProduction
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := &Config{Env: EnvProduction}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}

	cfg.Env = EnvDevelopment
	if cfg.IsProduction() {
		t.Error("IsProduction() = true, want false")
	}
}

// clearEnv unsets all config-related environment variables for the test
func clearEnv(t *testing.T) {
	t.Helper()
	vars := []string{
		"PORT", "ENV", "DATABASE_PATH", "ADMIN_API_KEY", "SHUTDOWN_TIMEOUT", "TIMEZONE",
		"REDIS_URL", "CACHE_TTL", "CACHE_MAX_ENTRIES", "TRUST_PROXY", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
	}
	for _, v := range vars {
		if old, ok := os.LookupEnv(v); ok {
			t.Cleanup(func() { os.Setenv(v, old) })
		}
		os.Unsetenv(v)
	}
}
