package objectstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wanderly/campaign-studio/internal/config"
	"github.com/wanderly/campaign-studio/internal/pkg/logger"
)

const cacheKeyPrefix = "objcache:"

// CachedFetcher wraps a Fetcher with a Redis read-through cache.
// The datasets change rarely, so a short TTL keeps the dashboard snappy
// without a refresh control.
type CachedFetcher struct {
	inner  Fetcher
	client *redis.Client
	ttl    time.Duration
}

// NewCachedFetcher creates a read-through cache in front of inner.
func NewCachedFetcher(inner Fetcher, cfg appconfig.Cache) *CachedFetcher {
	return &CachedFetcher{
		inner:  inner,
		client: redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}),
		ttl:    cfg.TTL(),
	}
}

// newCachedFetcherWithClient is used by tests to inject a miniredis-backed client.
func newCachedFetcherWithClient(inner Fetcher, client *redis.Client, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{inner: inner, client: client, ttl: ttl}
}

// Fetch returns the cached body for key, falling through to the inner
// fetcher on miss. Cache failures degrade to a direct fetch.
func (c *CachedFetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	cached, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err == nil {
		return cached, nil
	}
	if err != redis.Nil {
		logger.Warn("object cache read failed, fetching directly", "key", key, "error", err)
	}

	data, err := c.inner.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := c.client.Set(ctx, cacheKeyPrefix+key, data, c.ttl).Err(); err != nil {
		logger.Warn("object cache write failed", "key", key, "error", err)
	}
	return data, nil
}
