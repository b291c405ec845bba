// Package cache is a process-wide TTL key/value cache for service responses.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/topup/internal/infra/metrics"
)

const (
	DefaultTTL           = 5 * time.Minute
	DefaultSweepInterval = 10 * time.Minute
)

type entry struct {
	value     any
	timestamp time.Time
	ttl       time.Duration
}

// expired uses a strict comparison: an entry aged exactly ttl is still live.
func (e entry) expired(now time.Time) bool {
	return now.Sub(e.timestamp) > e.ttl
}

// Cache stores values with a per-entry TTL. Expired entries are dropped lazily
// on Get and proactively by the sweep loop started with Start.
type Cache struct {
	defaultTTL    time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
}

// Config holds cache settings.
type Config struct {
	DefaultTTL    time.Duration `yaml:"default_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// New creates a cache. Zero config values fall back to the defaults.
func New(cfg Config) *Cache {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	return &Cache{
		defaultTTL:    cfg.DefaultTTL,
		sweepInterval: cfg.SweepInterval,
		now:           time.Now,
		entries:       make(map[string]entry),
	}
}

// WithClock replaces the time source.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Set stores value under key. ttl <= 0 uses the default TTL.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, timestamp: c.now(), ttl: ttl}
	n := len(c.entries)
	c.mu.Unlock()
	metrics.CacheEntries.Set(float64(n))
}

// Get returns the value for key if it has not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		metrics.CacheOpsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	if e.expired(c.now()) {
		c.mu.Lock()
		// Re-check: a concurrent Set may have replaced the entry.
		if cur, still := c.entries[key]; still && cur.timestamp.Equal(e.timestamp) {
			delete(c.entries, key)
		}
		n := len(c.entries)
		c.mu.Unlock()
		metrics.CacheEntries.Set(float64(n))
		metrics.CacheOpsTotal.WithLabelValues("evict").Inc()
		metrics.CacheOpsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.CacheOpsTotal.WithLabelValues("hit").Inc()
	return e.value, true
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	n := len(c.entries)
	c.mu.Unlock()
	metrics.CacheEntries.Set(float64(n))
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	metrics.CacheEntries.Set(0)
}

// Len returns the number of physically present entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep evicts every expired entry and returns how many were removed.
func (c *Cache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	metrics.CacheEntries.Set(float64(n))
	if removed > 0 {
		metrics.CacheOpsTotal.WithLabelValues("evict").Add(float64(removed))
	}
	return removed
}

// Start runs the sweep loop until ctx is done.
func (c *Cache) Start(ctx context.Context) {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// GetOrLoad returns the cached value for key or calls load and caches its
// result. Errors are not cached.
func GetOrLoad[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	if c != nil {
		if v, ok := c.Get(key); ok {
			if typed, ok := v.(T); ok {
				return typed, nil
			}
		}
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if c != nil {
		c.Set(key, v, ttl)
	}
	return v, nil
}
