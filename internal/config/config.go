// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds runtime configuration shared by the binaries.
type Config struct {
	// Environment is the deployment environment name.
	Environment string

	// Port is the HTTP listen port of the API server.
	Port string

	// LogLevel is the minimum zerolog level.
	LogLevel zerolog.Level

	// VVOBaseURL is the base URL of the upstream trip planner.
	VVOBaseURL string

	// VVOTimeout is the per-attempt upstream request timeout.
	VVOTimeout time.Duration

	// VVOMaxRetries bounds upstream retries.
	VVOMaxRetries uint64

	// StopCacheTTL is how long resolved stops are cached. Negative disables caching.
	StopCacheTTL time.Duration

	// TelemetryEnabled turns on OpenTelemetry export.
	TelemetryEnabled bool

	// OTLPEndpoint is the OTLP gRPC collector address.
	OTLPEndpoint string
}

// Load reads the given .env files, if present, and then the environment.
// Variables already set in the environment win over file values.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv creates a Config from environment variables.
func FromEnv() (Config, error) {
	level, err := zerolog.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	timeout, err := time.ParseDuration(getEnvOrDefault("VVO_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("VVO_TIMEOUT: %w", err)
	}

	retries, err := strconv.ParseUint(getEnvOrDefault("VVO_MAX_RETRIES", "3"), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("VVO_MAX_RETRIES: %w", err)
	}

	ttl, err := time.ParseDuration(getEnvOrDefault("STOP_CACHE_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("STOP_CACHE_TTL: %w", err)
	}

	cfg := Config{
		Environment:      getEnvOrDefault("APP_ENV", "development"),
		Port:             getEnvOrDefault("APP_PORT", "8080"),
		LogLevel:         level,
		VVOBaseURL:       getEnvOrDefault("VVO_BASE_URL", "https://webapi.vvo-online.de"),
		VVOTimeout:       timeout,
		VVOMaxRetries:    retries,
		StopCacheTTL:     ttl,
		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:     getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that parsing alone does not catch.
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("APP_PORT: invalid port %q", c.Port)
	}
	if c.VVOTimeout <= 0 {
		return fmt.Errorf("VVO_TIMEOUT: must be positive, got %s", c.VVOTimeout)
	}
	if c.VVOBaseURL == "" {
		return errors.New("VVO_BASE_URL: must not be empty")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
