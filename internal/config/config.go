// Package config loads uptime-core's runtime configuration from the
// environment. There is no YAML file and no package-level cache: Load
// returns a *Config that callers thread through explicitly.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the complete runtime configuration for uptime-core.
type Config struct {
	DatabaseURL string

	AppHost     string
	AppPort     int
	AppTimezone string

	Concurrency   int
	RetentionDays int

	AuthEnabled  bool
	AuthUsername string
	AuthPassword string

	SessionSecretKey string
	SessionMaxAge    time.Duration
}

// Load reads configuration from the environment, applies defaults, and
// validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),

		AppHost:     getEnv("APP_HOST", "0.0.0.0"),
		AppTimezone: getEnv("APP_TIMEZONE", "Europe/Amsterdam"),

		AuthUsername: getEnv("AUTH_USERNAME", "admin"),
		AuthPassword: getEnv("AUTH_PASSWORD", "change-me"),

		SessionSecretKey: os.Getenv("SESSION_SECRET_KEY"),
	}
	// An AUTH_USERNAME that is set but empty stays empty so validate can
	// reject it; only an unset variable falls back to the default.
	if v, ok := os.LookupEnv("AUTH_USERNAME"); ok {
		cfg.AuthUsername = v
	}

	var err error
	if cfg.AppPort, err = getEnvInt("APP_PORT", 8000); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = getEnvInt("CONCURRENCY", 20); err != nil {
		return nil, err
	}
	if cfg.RetentionDays, err = getEnvInt("RETENTION_DAYS", 35); err != nil {
		return nil, err
	}

	cfg.AuthEnabled = getEnvBool("AUTH_ENABLED", true)

	maxAgeSeconds, err := getEnvInt("SESSION_MAX_AGE", 86400)
	if err != nil {
		return nil, err
	}
	cfg.SessionMaxAge = time.Duration(maxAgeSeconds) * time.Second

	if cfg.SessionSecretKey == "" {
		secret, err := randomSecret(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate SESSION_SECRET_KEY: %w", err)
		}
		cfg.SessionSecretKey = secret
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AppPort <= 0 || cfg.AppPort > 65535 {
		return fmt.Errorf("invalid APP_PORT: %d", cfg.AppPort)
	}
	if cfg.Concurrency <= 0 {
		return fmt.Errorf("invalid CONCURRENCY: %d", cfg.Concurrency)
	}
	if cfg.RetentionDays <= 0 {
		return fmt.Errorf("invalid RETENTION_DAYS: %d", cfg.RetentionDays)
	}
	if _, err := time.LoadLocation(cfg.AppTimezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.AppTimezone, err)
	}
	if cfg.AuthEnabled && cfg.AuthUsername == "" {
		return fmt.Errorf("AUTH_USERNAME cannot be empty when AUTH_ENABLED=true")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return strings.ToLower(val) == "true"
}

// randomSecret generates a development-only fallback session secret. A
// production deployment is expected to set SESSION_SECRET_KEY explicitly.
func randomSecret(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
