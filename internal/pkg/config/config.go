// Package config reads the storefront's settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr string
	LogLevel string

	// CatalogPath points at a menu JSON file. Empty uses the built-in menu.
	CatalogPath     string
	CatalogCacheTTL time.Duration

	// RedisAddr empty selects the in-process cache.
	RedisAddr    string
	DatabasePath string
	// RabbitMQURL empty logs kitchen events instead of publishing them.
	RabbitMQURL string

	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration
	IdempotencyTTL       time.Duration
	ShutdownTimeout      time.Duration

	ServiceName  string
	Environment  string
	OTLPEndpoint string
}

// Load reads every setting, applying defaults for unset variables.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CatalogPath:  getEnv("CATALOG_PATH", ""),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		DatabasePath: getEnv("DATABASE_PATH", "./data/storefront.db"),
		RabbitMQURL:  getEnv("RABBITMQ_URL", ""),
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "storefront"),
		Environment:  getEnv("OTEL_RESOURCE_ATTRIBUTES_ENV", "local"),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	var err error
	durations := []struct {
		dst      *time.Duration
		key      string
		fallback time.Duration
	}{
		{&cfg.CatalogCacheTTL, "CATALOG_CACHE_TTL", 10 * time.Minute},
		{&cfg.SessionIdleTimeout, "SESSION_IDLE_TIMEOUT", 2 * time.Hour},
		{&cfg.SessionSweepInterval, "SESSION_SWEEP_INTERVAL", time.Minute},
		{&cfg.IdempotencyTTL, "IDEMPOTENCY_TTL", 24 * time.Hour},
	}
	for _, d := range durations {
		if *d.dst, err = getEnvAsDuration(d.key, d.fallback); err != nil {
			return nil, err
		}
	}

	secs, err := getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout = time.Duration(secs) * time.Second

	if cfg.SessionSweepInterval <= 0 {
		return nil, fmt.Errorf("config: SESSION_SWEEP_INTERVAL must be positive")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer: %w", key, value, err)
	}
	return n, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a duration: %w", key, value, err)
	}
	return d, nil
}
