package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedRatesFeedDecorator wraps a RatesFeed with a Redis copy of the last live snapshot.
// Fallback results are never cached.
type CachedRatesFeedDecorator struct {
	feed     RatesFeed
	cache    *redis.Client
	ttl      time.Duration
	feedName string
	log      *zap.SugaredLogger
}

// NewCachedRatesFeed creates a new CachedRatesFeedDecorator.
func NewCachedRatesFeed(feed RatesFeed, cache *redis.Client, ttl time.Duration, feedName string, logger *zap.SugaredLogger) *CachedRatesFeedDecorator {
	return &CachedRatesFeedDecorator{
		feed:     feed,
		cache:    cache,
		ttl:      ttl,
		feedName: feedName,
		log:      logger,
	}
}

func (p *CachedRatesFeedDecorator) cacheKey() string {
	return fmt.Sprintf("feed_cache:{%s}", p.feedName)
}

// Fetch returns the cached snapshot when mode allows it, otherwise calls the underlying feed.
func (p *CachedRatesFeedDecorator) Fetch(ctx context.Context, mode FetchMode) (*FeedResult, error) {
	if p.cache == nil {
		return p.feed.Fetch(ctx, mode)
	}

	key := p.cacheKey()

	if mode == FetchCached {
		if raw, err := p.cache.Get(ctx, key).Bytes(); err == nil {
			var cached FeedResult
			if json.Unmarshal(raw, &cached) == nil && len(cached.Rates) > 0 {
				return &cached, nil
			}
		}
	}

	res, err := p.feed.Fetch(ctx, mode)
	if err != nil {
		return nil, err
	}

	if !res.UsedFallback {
		p.store(ctx, key, res)
	}

	return res, nil
}

func (p *CachedRatesFeedDecorator) store(ctx context.Context, key string, res *FeedResult) {
	raw, err := json.Marshal(res)
	if err != nil {
		p.log.Warnw("Failed to encode feed snapshot for cache", "feed", p.feedName, "error", err)
		return
	}
	if err := p.cache.Set(ctx, key, raw, p.ttl).Err(); err != nil {
		p.log.Warnw("Failed to update cache", "key", key, "error", err)
	}
}

var _ RatesFeed = (*CachedRatesFeedDecorator)(nil)
