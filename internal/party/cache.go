package party

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"fjacquet/payout-report/internal/logging"
	"fjacquet/payout-report/internal/models"

	redis "github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces cached address lists.
const KeyPrefix = "party:addresses:"

// Cache stores serialized address lists.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
}

type memoryCache struct {
	mu  sync.Mutex
	m   map[string]cacheEntry
	now func() time.Time
}

type cacheEntry struct {
	b   []byte
	exp time.Time
}

// NewMemoryCache returns a process-local Cache.
func NewMemoryCache() Cache {
	return &memoryCache{m: make(map[string]cacheEntry), now: time.Now}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok {
		return nil, false
	}
	if !e.exp.IsZero() && c.now().After(e.exp) {
		delete(c.m, key)
		return nil, false
	}
	return e.b, true
}

func (c *memoryCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := cacheEntry{b: append([]byte(nil), val...)}
	if ttl > 0 {
		e.exp = c.now().Add(ttl)
	}
	c.m[key] = e
}

// RedisOptions selects the Redis server backing the cache.
type RedisOptions struct {
	Addr     string
	DB       int
	Password string
}

type redisCache struct {
	r      *redis.Client
	logger logging.Logger
}

// NewCache returns a Redis-backed Cache when opts.Addr is set, otherwise an
// in-memory one.
func NewCache(opts RedisOptions, logger logging.Logger) Cache {
	if strings.TrimSpace(opts.Addr) == "" {
		return NewMemoryCache()
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &redisCache{
		r: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			DB:       opts.DB,
			Password: opts.Password,
		}),
		logger: logger.WithField(logging.FieldComponent, "party-cache"),
	}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	v, err := c.r.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).Debug("Redis get failed", logging.F(logging.FieldResource, key))
		}
		return nil, false
	}
	return v, true
}

func (c *redisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := c.r.Set(ctx, key, val, ttl).Err(); err != nil {
		c.logger.WithError(err).Debug("Redis set failed", logging.F(logging.FieldResource, key))
	}
}

// CachedResolver memoizes another Resolver. Errors are never cached.
type CachedResolver struct {
	next  Resolver
	cache Cache
	ttl   time.Duration
}

// NewCachedResolver wraps next with cache.
func NewCachedResolver(next Resolver, cache Cache, ttl time.Duration) *CachedResolver {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &CachedResolver{next: next, cache: cache, ttl: ttl}
}

// Resolve implements Resolver.
func (c *CachedResolver) Resolve(ctx context.Context, partyNumber string) ([]models.Address, error) {
	key := KeyPrefix + strings.TrimSpace(partyNumber)
	if b, ok := c.cache.Get(ctx, key); ok {
		var cached []models.Address
		if err := json.Unmarshal(b, &cached); err == nil {
			return cached, nil
		}
	}

	addresses, err := c.next.Resolve(ctx, partyNumber)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(addresses); err == nil {
		c.cache.Set(ctx, key, b, c.ttl)
	}
	return addresses, nil
}
