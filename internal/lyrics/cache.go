package lyrics

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/lyrics-service/internal/persistence"
)

// CachedProvider fronts a Provider with a Redis cache so repeat lookups for
// the same track skip the script entirely. Cache failures degrade to a
// direct fetch.
type CachedProvider struct {
	provider *Provider
	redis    *persistence.Redis
	ttl      time.Duration
	logger   *zap.Logger
}

// NewCachedProvider wraps the provider with the given cache.
func NewCachedProvider(provider *Provider, redis *persistence.Redis, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	return &CachedProvider{provider: provider, redis: redis, ttl: ttl, logger: logger}
}

// Lyrics returns cached lyrics when available, otherwise fetches and caches.
func (c *CachedProvider) Lyrics(ctx context.Context, track, artist string) (string, error) {
	key := cacheKey(track, artist)

	if c.redis != nil && c.redis.Client != nil {
		if cached, err := c.redis.Client.Get(ctx, key).Result(); err == nil {
			return cached, nil
		}
	}

	lyrics, err := c.provider.Fetch(ctx, track, artist)
	if err != nil {
		return "", err
	}

	if c.redis != nil && c.redis.Client != nil {
		if err := c.redis.Client.Set(ctx, key, lyrics, c.ttl).Err(); err != nil {
			c.logger.Debug("failed to cache lyrics", zap.String("key", key), zap.Error(err))
		}
	}
	return lyrics, nil
}

func cacheKey(track, artist string) string {
	return "lyrics:" + strings.ToLower(artist) + ":" + strings.ToLower(track)
}
