package recurrence

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"sync"
	"time"
)

// CacheConfig holds configuration for the expansion cache
type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl"`              // How long entries stay valid
	MaxEntries      int           `yaml:"max_entries"`      // Maximum number of entries before eviction
	CleanupInterval time.Duration `yaml:"cleanup_interval"` // How often to run cleanup
}

// DefaultCacheConfig provides sensible defaults for recurrence caching
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}

type cacheEntry[V any] struct {
	value      V
	expiresAt  time.Time
	accessedAt time.Time
}

// Cache is a TTL cache that evicts the least recently accessed entries once
// it holds more than MaxEntries. A background goroutine drops expired
// entries until Close is called.
type Cache[V any] struct {
	entries     map[string]*cacheEntry[V]
	mutex       sync.Mutex
	ttl         time.Duration
	maxEntries  int
	now         func() time.Time
	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// NewCache creates a cache with the given configuration. Non-positive
// settings fall back to DefaultCacheConfig.
func NewCache[V any](config CacheConfig) *Cache[V] {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheConfig.TTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultCacheConfig.MaxEntries
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCacheConfig.CleanupInterval
	}
	c := &Cache[V]{
		entries:     make(map[string]*cacheEntry[V]),
		ttl:         config.TTL,
		maxEntries:  config.MaxEntries,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	go c.cleanupLoop(config.CleanupInterval)
	return c
}

// Get retrieves a cached value if it exists and hasn't expired
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var zero V
	entry, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	now := c.now()
	if now.After(entry.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	entry.accessedAt = now
	return entry.value, true
}

// Set stores a value, evicting old entries when over the limit.
func (c *Cache[V]) Set(key string, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	c.entries[key] = &cacheEntry[V]{
		value:      value,
		expiresAt:  now.Add(c.ttl),
		accessedAt: now,
	}
	if len(c.entries) > c.maxEntries {
		c.cleanup()
	}
}

// cleanup removes expired entries, then the least recently accessed ones
// while over the limit. The caller holds the mutex.
func (c *Cache[V]) cleanup() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	excess := len(c.entries) - c.maxEntries
	if excess <= 0 {
		return
	}
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return c.entries[a].accessedAt.Compare(c.entries[b].accessedAt)
	})
	for _, key := range keys[:excess] {
		delete(c.entries, key)
	}
}

func (c *Cache[V]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.cleanup()
			c.mutex.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine and clears the cache. It may be called
// more than once.
func (c *Cache[V]) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCleanup)
	})
	c.mutex.Lock()
	c.entries = make(map[string]*cacheEntry[V])
	c.mutex.Unlock()
}

// Stats returns cache statistics
func (c *Cache[V]) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stats := CacheStats{TotalEntries: len(c.entries)}
	now := c.now()
	for _, entry := range c.entries {
		if now.After(entry.expiresAt) {
			stats.ExpiredEntries++
		}
	}
	stats.ActiveEntries = stats.TotalEntries - stats.ExpiredEntries
	return stats
}

// CacheStats provides information about cache performance
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}

// cacheKey hashes every input that influences a result.
func cacheKey(operation string, ev Event, rangeStart, rangeEnd time.Time, opts ExpansionOptions) string {
	hasher := sha256.New()
	write := func(s string) {
		hasher.Write([]byte(s))
		hasher.Write([]byte{0})
	}
	stamp := func(t time.Time) {
		write(t.Format(time.RFC3339Nano))
	}

	write(operation)
	stamp(ev.Start)
	stamp(ev.End)
	if ev.Rule != nil {
		write(ev.Rule.String())
		stamp(ev.Rule.Start())
	}
	write("rdate")
	for _, rdate := range ev.RDATE {
		stamp(rdate)
	}
	write("exdate")
	for _, exdate := range ev.EXDATE {
		stamp(exdate)
	}
	stamp(rangeStart)
	stamp(rangeEnd)
	write(fmt.Sprintf("%d/%d", opts.MaxOccurrences, opts.MaxTimeSpan))

	return fmt.Sprintf("%x", hasher.Sum(nil))
}
