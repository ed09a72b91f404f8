package pricing

import (
	"context"
	"errors"
	"sync"
	"time"

	"vaultflow/internal/logger"

	"github.com/go-redis/redis"
	"github.com/shopspring/decimal"
)

// Cache stores price strings with a TTL.
type Cache interface {
	Get(key string) (string, bool, error)
	Set(key, value string, ttl time.Duration) error
}

// RedisCache is a Cache backed by redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to addr and pings it.
func NewRedisCache(addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
		ReadTimeout: 5 * time.Second,
	})
	if err := client.Ping().Err(); err != nil {
		return nil, err
	}
	return &RedisCache{client: client}, nil
}

// Get implements Cache.
func (c *RedisCache) Get(key string) (string, bool, error) {
	val, err := c.client.Get(key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(key, value string, ttl time.Duration) error {
	return c.client.Set(key, value, ttl).Err()
}

// Close closes the redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryCache is an in-process Cache, used when no redis is configured.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]memoryEntry{}, now: time.Now}
}

// Get implements Cache.
func (c *MemoryCache) Get(key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: value, expires: c.now().Add(ttl)}
	return nil
}

// Cached decorates a PriceService with a read-through cache. Cache failures
// are logged and bypassed.
type Cached struct {
	next  PriceService
	cache Cache
	ttl   time.Duration
}

// NewCached wraps next.
func NewCached(next PriceService, cache Cache, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: cache, ttl: ttl}
}

// GetAdaPrice implements PriceService.
func (c *Cached) GetAdaPrice(ctx context.Context) (decimal.Decimal, error) {
	return c.load("price:ada:usd", func() (decimal.Decimal, error) {
		return c.next.GetAdaPrice(ctx)
	})
}

// GetTokenPrice implements PriceService.
func (c *Cached) GetTokenPrice(ctx context.Context, policyID, assetName string) (decimal.Decimal, error) {
	return c.load("price:token:"+policyID+assetName, func() (decimal.Decimal, error) {
		return c.next.GetTokenPrice(ctx, policyID, assetName)
	})
}

func (c *Cached) load(key string, fetch func() (decimal.Decimal, error)) (decimal.Decimal, error) {
	log := logger.Named("pricing")

	if raw, ok, err := c.cache.Get(key); err != nil {
		log.Warnw("price cache read failed", "key", key, "error", err)
	} else if ok {
		if p, err := decimal.NewFromString(raw); err == nil {
			return p, nil
		}
	}

	p, err := fetch()
	if err != nil {
		return decimal.Zero, err
	}
	if err := c.cache.Set(key, p.String(), c.ttl); err != nil {
		log.Warnw("price cache write failed", "key", key, "error", err)
	}
	return p, nil
}
