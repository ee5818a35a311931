// Package testkit starts Postgres and Redis with testcontainers for integration tests
// and serves stub TCMB documents.
package testkit

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds environment-driven configuration for integration test infrastructure.
type Config struct {
	PGImage        string
	RedisImage     string
	PGDSN          string        // If set, skip Postgres container.
	RedisAddr      string        // If set, skip Redis container.
	StartupTimeout time.Duration // Max time to wait for containers to become ready.
	KeepContainers bool          // If true, do not terminate containers on shutdown.
}

// LoadConfig reads test infrastructure settings from environment variables.
func LoadConfig() Config {
	return Config{
		PGImage:        env("TEST_PG_IMAGE", "postgres:18.1-alpine"),
		RedisImage:     env("TEST_REDIS_IMAGE", "redis:8.4.0-alpine"),
		PGDSN:          os.Getenv("TEST_PG_DSN"),
		RedisAddr:      os.Getenv("TEST_REDIS_ADDR"),
		StartupTimeout: envParsed("TEST_STARTUP_TIMEOUT", 90*time.Second, parseTimeout),
		KeepContainers: envParsed("KEEP_CONTAINERS", false, strconv.ParseBool),
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envParsed parses key with parse, falling back to def when unset or invalid.
func envParsed[T any](key string, def T, parse func(string) (T, error)) T {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := parse(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "testkit: invalid value %q for %s, using default %v\n", v, key, def)
		return def
	}
	return parsed
}

// parseTimeout accepts a Go duration or plain seconds.
func parseTimeout(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}
