// Package config provides application configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"
)

// Config holds the complete application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Feed      FeedConfig
	Scheduler SchedulerConfig
	Worker    WorkerConfig
	Cache     CacheConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int  `mapstructure:"port"`
	ServeSwagger  bool `mapstructure:"serve_swagger"`
	ServeAsynqmon bool `mapstructure:"serve_asynqmon"`
	ServeMetrics  bool `mapstructure:"serve_metrics"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSec int    `mapstructure:"conn_max_lifetime_sec"`
	DSN                string
}

// RedisConfig holds connection settings for both Redis instances.
type RedisConfig struct {
	AsynqAddr string `mapstructure:"asynq_addr"` // Redis instance for the asynq scheduler and queue (required).
	CacheAddr string `mapstructure:"cache_addr"` // Redis instance for the rate caches (required).
}

// FeedConfig holds settings for the official rate feed.
type FeedConfig struct {
	URL         string `mapstructure:"url"`
	TimeoutSec  int    `mapstructure:"timeout_sec"`
	CacheTTLSec int    `mapstructure:"cache_ttl_sec"`
}

// SchedulerConfig controls the daily synchronization trigger.
type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Cron     string `mapstructure:"cron"`
	Timezone string `mapstructure:"timezone"`
}

// WorkerConfig holds background worker and task queue settings.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	TimeoutSec  int `mapstructure:"timeout_sec"`
}

// CacheConfig holds caching settings.
type CacheConfig struct {
	LatestRatesTTLSec int `mapstructure:"latest_rates_ttl_sec"`
}

// AuthConfig lists the API keys accepted on the /rates routes. An empty list disables auth.
type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// RateLimitConfig limits manual synchronization requests, e.g. "5-M" for five per minute.
type RateLimitConfig struct {
	ManualSync string `mapstructure:"manual_sync"`
}

// Location resolves the scheduler timezone. Validate guarantees it loads.
func (c SchedulerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfig reads configuration from config files, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file found or error loading it: %v\n", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Config search paths
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("./internal/config")

	viper.SetEnvPrefix("RATESVC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if no config file, we have defaults and env
		fmt.Printf("Config file not found: %v\n", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	// Comma separated env values arrive as a single element.
	cfg.Auth.APIKeys = splitKeys(cfg.Auth.APIKeys)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeSec <= 0 {
		cfg.Database.ConnMaxLifetimeSec = 300
	}

	cfg.Database.DSN = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.User, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Name, cfg.Database.SSLMode)

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.serve_swagger", true)
	viper.SetDefault("server.serve_asynqmon", true)
	viper.SetDefault("server.serve_metrics", true)
	viper.SetDefault("database.host", "db")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.name", "ratesdb")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime_sec", 300)
	viper.SetDefault("redis.asynq_addr", "redis_asynq:6380")
	viper.SetDefault("redis.cache_addr", "redis_cache:6381")
	viper.SetDefault("feed.url", "https://www.tcmb.gov.tr/kurlar/today.xml")
	viper.SetDefault("feed.timeout_sec", 30)
	viper.SetDefault("feed.cache_ttl_sec", 900)
	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.cron", "5 0 * * *")
	viper.SetDefault("scheduler.timezone", "Europe/Istanbul")
	viper.SetDefault("worker.concurrency", 1)
	viper.SetDefault("worker.timeout_sec", 120)
	viper.SetDefault("cache.latest_rates_ttl_sec", 600)
	viper.SetDefault("auth.api_keys", []string{})
	viper.SetDefault("ratelimit.manual_sync", "5-M")
}

func splitKeys(keys []string) []string {
	var out []string
	for _, k := range keys {
		for _, part := range strings.Split(k, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks that all required configuration fields are set and valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}

	if c.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if c.Database.Port <= 0 {
		errs = append(errs, fmt.Errorf("database.port must be positive, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}
	if c.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}

	if c.Redis.AsynqAddr == "" {
		errs = append(errs, fmt.Errorf("redis.asynq_addr is required (set RATESVC_REDIS_ASYNQ_ADDR)"))
	}
	if c.Redis.CacheAddr == "" {
		errs = append(errs, fmt.Errorf("redis.cache_addr is required (set RATESVC_REDIS_CACHE_ADDR)"))
	}

	if c.Feed.URL == "" {
		errs = append(errs, fmt.Errorf("feed.url is required"))
	}
	if c.Feed.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("feed.timeout_sec must be positive, got %d", c.Feed.TimeoutSec))
	}
	if c.Feed.CacheTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("feed.cache_ttl_sec must be positive, got %d", c.Feed.CacheTTLSec))
	}

	if c.Scheduler.Cron == "" {
		errs = append(errs, fmt.Errorf("scheduler.cron is required"))
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil || c.Scheduler.Timezone == "" {
		errs = append(errs, fmt.Errorf("scheduler.timezone %q is not a valid IANA zone", c.Scheduler.Timezone))
	}

	if c.Worker.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("worker.concurrency must be positive, got %d", c.Worker.Concurrency))
	}
	if c.Worker.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.timeout_sec must be positive, got %d", c.Worker.TimeoutSec))
	}

	if c.Cache.LatestRatesTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.latest_rates_ttl_sec must be positive, got %d", c.Cache.LatestRatesTTLSec))
	}

	if _, err := limiter.NewRateFromFormatted(c.RateLimit.ManualSync); err != nil {
		errs = append(errs, fmt.Errorf("ratelimit.manual_sync %q is invalid: %w", c.RateLimit.ManualSync, err))
	}

	return errors.Join(errs...)
}
