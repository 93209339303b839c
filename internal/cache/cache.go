// Package cache memoizes expensive remote lookups behind a Redis backend with
// a transparent in-memory fallback.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"termo/api/internal/logging"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Status is the outcome of a cache read.
type Status int

const (
	Miss Status = iota
	Hit
	Failed
)

func (s Status) String() string {
	switch s {
	case Hit:
		return "hit"
	case Failed:
		return "failed"
	default:
		return "miss"
	}
}

// Stats describes the backend serving the cache.
type Stats struct {
	Backend string `json:"type"`
	Keys    int    `json:"keys"`
}

// Store is a byte-oriented cache backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context, pattern string) error
	Exists(ctx context.Context, key string) (bool, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Cache stores JSON encoded values with a per-entry TTL. It is created once at
// process start and shared by every request.
type Cache struct {
	store      Store
	defaultTTL time.Duration
	logger     *zap.Logger
}

func New(store Store, defaultTTL time.Duration, logger *zap.Logger) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &Cache{
		store:      store,
		defaultTTL: defaultTTL,
		logger:     logging.OrNop(logger).Named("cache"),
	}
}

func NewMemory(defaultTTL time.Duration, logger *zap.Logger) *Cache {
	return New(NewMemoryStore(), defaultTTL, logger)
}

// Open uses Redis when redisURL is set and reachable, and process memory
// otherwise. Callers never observe which backend was chosen.
func Open(redisURL string, defaultTTL time.Duration, logger *zap.Logger) *Cache {
	logger = logging.OrNop(logger)
	if strings.TrimSpace(redisURL) == "" {
		logger.Info("using in-memory cache")
		return NewMemory(defaultTTL, logger)
	}

	store, err := NewRedisStore(redisURL)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		return NewMemory(defaultTTL, logger)
	}
	logger.Info("redis cache initialized")
	return New(store, defaultTTL, logger)
}

// Get decodes the value stored under key into dst.
func (c *Cache) Get(ctx context.Context, key string, dst any) (Status, error) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Error("cache get error", zap.String("key", key), zap.Error(err))
		return Failed, err
	}
	if !ok {
		return Miss, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Error("cache decode error", zap.String("key", key), zap.Error(err))
		return Failed, fmt.Errorf("decode cached value: %w", err)
	}
	return Hit, nil
}

// Set stores value under key. A non-positive ttl uses the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.logger.Error("cache set error", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) (bool, error) {
	removed, err := c.store.Delete(ctx, key)
	if err != nil {
		c.logger.Error("cache delete error", zap.String("key", key), zap.Error(err))
	}
	return removed, err
}

// Clear removes every entry whose key contains pattern, or all entries when
// pattern is empty.
func (c *Cache) Clear(ctx context.Context, pattern string) error {
	if err := c.store.Clear(ctx, pattern); err != nil {
		c.logger.Error("cache clear error", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	c.logger.Info("cache cleared", zap.String("pattern", pattern))
	return nil
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	found, err := c.store.Exists(ctx, key)
	if err != nil {
		c.logger.Error("cache exists error", zap.String("key", key), zap.Error(err))
	}
	return found, err
}

func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	return c.store.Stats(ctx)
}

func (c *Cache) Close() error {
	return c.store.Close()
}

// Remember returns the cached result stored under key, or calls fn and caches
// its result for ttl. Errors from fn are returned and never cached. A failing
// cache degrades to calling fn directly.
func Remember[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	return RememberIf(ctx, c, key, ttl, fn, nil)
}

// RememberIf is Remember with a keep predicate: results for which keep
// returns false are returned but not stored. A nil keep stores everything.
func RememberIf[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func(context.Context) (T, error), keep func(T) bool) (T, error) {
	if c == nil {
		return fn(ctx)
	}

	var cached T
	status, err := c.Get(ctx, key, &cached)
	switch status {
	case Hit:
		c.logger.Debug("cache hit", zap.String("cache_key", key))
		return cached, nil
	case Failed:
		c.logger.Warn("cache unavailable, calling through", zap.String("cache_key", key), zap.Error(err))
	}

	value, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if keep != nil && !keep(value) {
		return value, nil
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		return value, nil
	}
	c.logger.Debug("cache miss - stored result", zap.String("cache_key", key))
	return value, nil
}
