package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		Server:    ServerConfig{Port: 8080},
		Database:  DatabaseConfig{Host: "db", Port: 5432, User: "postgres", Name: "ratesdb"},
		Redis:     RedisConfig{AsynqAddr: "localhost:6380", CacheAddr: "localhost:6381"},
		Feed:      FeedConfig{URL: "https://example.test/today.xml", TimeoutSec: 30, CacheTTLSec: 60},
		Scheduler: SchedulerConfig{Enabled: true, Cron: "5 0 * * *", Timezone: "Europe/Istanbul"},
		Worker:    WorkerConfig{Concurrency: 1, TimeoutSec: 60},
		Cache:     CacheConfig{LatestRatesTTLSec: 600},
		RateLimit: RateLimitConfig{ManualSync: "5-M"},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Feed.URL = ""
	cfg.Scheduler.Timezone = "Mars/Olympus"
	cfg.RateLimit.ManualSync = "often"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "feed.url")
	assert.Contains(t, err.Error(), "scheduler.timezone")
	assert.Contains(t, err.Error(), "ratelimit.manual_sync")
}

func TestSchedulerLocation(t *testing.T) {
	cfg := validConfig()
	loc := cfg.Scheduler.Location()
	assert.Equal(t, "Europe/Istanbul", loc.String())

	cfg.Scheduler.Timezone = "nope"
	assert.Equal(t, time.UTC, cfg.Scheduler.Location())
}

func TestSplitKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitKeys([]string{"a, b", "c", " "}))
	assert.Nil(t, splitKeys(nil))
}
