package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "link:"

// RedisCache fronts the link store on the redirect path. It is strictly
// advisory: every failure is logged and degraded to a miss or no-op, so a
// dead cache slows the system down but never breaks it. A miss carries no
// information about existence; the store stays authoritative.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisCache(addr, password string, db int, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisCache{client: client, logger: logger}, nil
}

// Lookup returns the cached destination for a shortcode. false means miss,
// whether the key is absent or the cache is unreachable.
func (c *RedisCache) Lookup(ctx context.Context, shortcode string) (string, bool) {
	destination, err := c.client.Get(ctx, keyPrefix+shortcode).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache lookup failed, treating as miss",
				zap.String("shortcode", shortcode),
				zap.Error(err))
		}
		return "", false
	}

	return destination, true
}

// Store caches a shortcode to destination mapping for ttl. The caller is
// responsible for capping ttl so the entry cannot outlive the link's expiry.
func (c *RedisCache) Store(ctx context.Context, shortcode, destination string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	if err := c.client.Set(ctx, keyPrefix+shortcode, destination, ttl).Err(); err != nil {
		c.logger.Warn("cache store failed",
			zap.String("shortcode", shortcode),
			zap.Error(err))
	}
}

// Invalidate drops the entries for the given shortcodes. Mutations that
// rename a code must pass both the old and the new one.
func (c *RedisCache) Invalidate(ctx context.Context, shortcodes ...string) {
	if len(shortcodes) == 0 {
		return
	}

	keys := make([]string, len(shortcodes))
	for i, code := range shortcodes {
		keys[i] = keyPrefix + code
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidation failed",
			zap.Strings("shortcodes", shortcodes),
			zap.Error(err))
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
