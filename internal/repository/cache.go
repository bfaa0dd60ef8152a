// internal/repository/cache.go
package repository

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/common/metrics"
	"dealflow-workers/internal/matching"

	"github.com/redis/go-redis/v9"
)

const (
	startupKeyPrefix = "startup:profile:"
	thesisKeyPrefix  = "thesis:criteria:"
)

// CachedStore puts a Redis read-through cache in front of the startup and
// thesis readers. Cache failures are logged and fall through to the source.
type CachedStore struct {
	startups StartupReader
	theses   ThesisReader
	cache    redis.Cmdable
	ttl      time.Duration
	logger   logger.Logger
}

func NewCachedStore(startups StartupReader, theses ThesisReader, cache redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		startups: startups,
		theses:   theses,
		cache:    cache,
		ttl:      ttl,
		logger:   log,
	}
}

func (c *CachedStore) GetStartup(ctx context.Context, id string) (*matching.StartupProfile, error) {
	return readThrough(ctx, c, "startup", startupKeyPrefix+id, func() (*matching.StartupProfile, error) {
		return c.startups.GetStartup(ctx, id)
	})
}

func (c *CachedStore) GetThesis(ctx context.Context, id string) (*matching.InvestorThesis, error) {
	return readThrough(ctx, c, "thesis", thesisKeyPrefix+id, func() (*matching.InvestorThesis, error) {
		return c.theses.GetThesis(ctx, id)
	})
}

// Invalidate drops cached entries after an upstream edit.
func (c *CachedStore) Invalidate(ctx context.Context, startupIDs, thesisIDs []string) error {
	keys := make([]string, 0, len(startupIDs)+len(thesisIDs))
	for _, id := range startupIDs {
		keys = append(keys, startupKeyPrefix+id)
	}
	for _, id := range thesisIDs {
		keys = append(keys, thesisKeyPrefix+id)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.cache.Del(ctx, keys...).Err()
}

func readThrough[T any](ctx context.Context, c *CachedStore, entity, key string, load func() (*T, error)) (*T, error) {
	raw, err := c.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			metrics.CacheLookups.WithLabelValues(entity, "hit").Inc()
			return &v, nil
		}
		c.logger.Warn("discarding undecodable cache entry", map[string]interface{}{"key": key})
		metrics.CacheLookups.WithLabelValues(entity, "error").Inc()
	case stderrors.Is(err, redis.Nil):
		metrics.CacheLookups.WithLabelValues(entity, "miss").Inc()
	default:
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err})
		metrics.CacheLookups.WithLabelValues(entity, "error").Inc()
	}

	v, err := load()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(v); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err})
		}
	}
	return v, nil
}
