package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	overview "github.com/goliatone/go-overview/components/overview"
)

// DefaultCachePrefix namespaces cached aggregates.
const DefaultCachePrefix = "overview:aggregate"

// CachedClient serves aggregates from Redis and falls back to the wrapped
// client on a miss. Redis failures are logged and bypass the cache.
type CachedClient struct {
	next      overview.AggregateClient
	client    redis.Cmdable
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

var _ overview.AggregateClient = (*CachedClient)(nil)

// NewCachedClient wraps next with a Redis cache of the given TTL.
func NewCachedClient(next overview.AggregateClient, client redis.Cmdable, ttl time.Duration, keyPrefix string, logger *zap.Logger) *CachedClient {
	if keyPrefix == "" {
		keyPrefix = DefaultCachePrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedClient{
		next:      next,
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

// FetchAggregate implements overview.AggregateClient.
func (c *CachedClient) FetchAggregate(ctx context.Context, query overview.Query) (overview.Aggregate, error) {
	key := c.buildKey(query)
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var agg overview.Aggregate
		if err := json.Unmarshal(data, &agg); err == nil {
			c.logger.Debug("cache hit", zap.String("key", key), zap.Int("bytes", len(data)))
			return agg, nil
		}
		c.logger.Warn("cache entry unreadable", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Error("cache get failed", zap.String("key", key), zap.Error(err))
	}

	agg, err := c.next.FetchAggregate(ctx, query)
	if err != nil {
		return overview.Aggregate{}, err
	}
	payload, err := json.Marshal(agg)
	if err != nil {
		return agg, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Error("cache set failed",
			zap.String("key", key),
			zap.Int("bytes", len(payload)),
			zap.Duration("ttl", c.ttl),
			zap.Error(err),
		)
	}
	return agg, nil
}

// Clear removes every cached aggregate under the key prefix.
func (c *CachedClient) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+":*", 0).Iterator()
	keys := []string{}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	c.logger.Info("cache cleared", zap.Int("key_count", len(keys)))
	return nil
}

func (c *CachedClient) buildKey(query overview.Query) string {
	return c.keyPrefix + ":" + queryKey(query)
}
