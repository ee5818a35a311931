package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	cacheKeyLatestRates    = "latest:{rates}"
	cacheKeyLatestRatesGen = "latest:{rates}:gen"
)

var errStaleSnapshot = errors.New("latest rates changed while the snapshot was read")

// latestRatesCache keeps the GetLatestRates snapshot in Redis. A nil client disables it.
//
// Every invalidation bumps a generation counter. A snapshot is stored only if the
// generation seen before the database read is still current, so a reader that raced
// with a sync cannot put pre-sync data back.
type latestRatesCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

func newLatestRatesCache(client *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *latestRatesCache {
	return &latestRatesCache{client: client, ttl: ttl, log: logger}
}

func (c *latestRatesCache) get(ctx context.Context) ([]RateResult, bool) {
	if c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, cacheKeyLatestRates).Bytes()
	if err != nil {
		return nil, false
	}

	var rates []RateResult
	if err := json.Unmarshal(raw, &rates); err != nil {
		c.log.Warnw("Discarding unreadable latest rates cache entry", "key", cacheKeyLatestRates, "error", err)
		return nil, false
	}
	return rates, true
}

// generation returns the current invalidation counter. ok is false when Redis
// cannot be read, and then the caller must not store a snapshot.
func (c *latestRatesCache) generation(ctx context.Context) (gen int64, ok bool) {
	if c.client == nil {
		return 0, false
	}
	gen, err := c.client.Get(ctx, cacheKeyLatestRatesGen).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warnw("Failed to read cache generation", "key", cacheKeyLatestRatesGen, "error", err)
		return 0, false
	}
	return gen, true
}

// set stores rates if no invalidation happened since gen was read.
func (c *latestRatesCache) set(ctx context.Context, gen int64, rates []RateResult) {
	if c.client == nil || len(rates) == 0 || c.ttl <= 0 {
		return
	}

	raw, err := json.Marshal(rates)
	if err != nil {
		c.log.Warnw("Failed to encode latest rates for cache", "error", err)
		return
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, cacheKeyLatestRatesGen).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleSnapshot
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKeyLatestRates, raw, c.ttl)
			return nil
		})
		return err
	}, cacheKeyLatestRatesGen)

	switch {
	case err == nil:
	case errors.Is(err, errStaleSnapshot), errors.Is(err, redis.TxFailedErr):
		c.log.Debugw("Skipped caching stale latest rates", "generation", gen)
	default:
		c.log.Warnw("Failed to update cache", "key", cacheKeyLatestRates, "error", err)
	}
}

func (c *latestRatesCache) invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, cacheKeyLatestRatesGen)
		pipe.Del(ctx, cacheKeyLatestRates)
		return nil
	})
	if err != nil {
		c.log.Warnw("Failed to invalidate cache", "key", cacheKeyLatestRates, "error", err)
	}
}
