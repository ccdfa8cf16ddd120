package enrich

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// PageCache caches fetched candidate pages in Redis so consecutive runs do
// not rehit retailer sites for products that stay incomplete.
type PageCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPageCache connects to Redis. An empty URL disables caching (nil cache).
func NewPageCache(redisURL string, ttl time.Duration) (*PageCache, error) {
	if redisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &PageCache{rdb: redis.NewClient(opts), ttl: ttl}, nil
}

// Get returns the cached raw HTML for pageURL, if present. Cache trouble is
// treated as a miss.
func (c *PageCache) Get(ctx context.Context, pageURL string) (string, bool) {
	raw, err := c.rdb.Get(ctx, cacheKey(pageURL)).Result()
	if err != nil {
		return "", false
	}
	return raw, true
}

// Set stores raw HTML under pageURL with the configured TTL. Failures are
// logged and ignored: the cache is an optimization, never a dependency.
func (c *PageCache) Set(ctx context.Context, pageURL, raw string) {
	if err := c.rdb.Set(ctx, cacheKey(pageURL), raw, c.ttl).Err(); err != nil {
		log.Printf("⚠️ page cache write failed for %s: %v", pageURL, err)
	}
}

// Close releases the Redis connection.
func (c *PageCache) Close() error {
	return c.rdb.Close()
}

func cacheKey(pageURL string) string {
	return "storelift:page:" + pageURL
}
