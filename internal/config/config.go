// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"MADBATTER_DB_PATH" envDefault:"./data/madbatter.db"`
	SessionSecret string `env:"MADBATTER_SESSION_SECRET,required"`
	ServerHost    string `env:"MADBATTER_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"MADBATTER_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"MADBATTER_ENV" envDefault:"development"`
	LogLevel      string `env:"MADBATTER_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"MADBATTER_UPLOADS_DIR" envDefault:"./uploads"`

	// Remote persistence. When set, specials and bookings go through the
	// REST backend instead of the local KV documents.
	APIURL   string `env:"MADBATTER_API_URL"`
	APIToken string `env:"MADBATTER_API_TOKEN"`

	// Cache configuration
	RedisURL     string `env:"MADBATTER_REDIS_URL"`                          // Optional Redis URL for distributed caching
	CachePrefix  string `env:"MADBATTER_CACHE_PREFIX" envDefault:"batter:"`  // Redis key prefix
	CacheTTL     int    `env:"MADBATTER_CACHE_TTL" envDefault:"3600"`        // Default cache TTL in seconds
	CacheMaxSize int    `env:"MADBATTER_CACHE_MAX_SIZE" envDefault:"10000"`  // Max memory cache entries

	// Email notifications (booking and contact forms)
	ResendAPIKey string `env:"MADBATTER_RESEND_API_KEY"`
	EmailFrom    string `env:"MADBATTER_EMAIL_FROM" envDefault:"The Mad Batter <no-reply@themadbatter.example>"`
	EmailTo      string `env:"MADBATTER_EMAIL_TO"`

	// GeoIP configuration
	GeoIPDBPath string `env:"MADBATTER_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Event log retention in days
	EventRetentionDays int `env:"MADBATTER_EVENT_RETENTION_DAYS" envDefault:"90"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// UseRemoteStore returns true if the REST persistence backend is configured.
func (c Config) UseRemoteStore() bool {
	return c.APIURL != ""
}

// EmailEnabled returns true if outgoing notifications are configured.
func (c Config) EmailEnabled() bool {
	return c.ResendAPIKey != "" && c.EmailTo != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("MADBATTER_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("MADBATTER_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("MADBATTER_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
