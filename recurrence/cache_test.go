package recurrence

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cyp0633/librrule/rrule"
)

// fakeClock lets tests move a cache through time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(t *testing.T, config CacheConfig) (*Cache[bool], *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache := NewCache[bool](config)
	cache.now = clock.Now
	t.Cleanup(cache.Close)
	return cache, clock
}

func TestCache_BasicOperations(t *testing.T) {
	cache, _ := newTestCache(t, CacheConfig{
		TTL:             5 * time.Minute,
		MaxEntries:      100,
		CleanupInterval: time.Minute,
	})

	// Cache miss first
	result, found := cache.Get("a")
	if found {
		t.Error("Expected cache miss, got hit")
	}
	if result {
		t.Error("Expected zero value on cache miss")
	}

	cache.Set("a", true)

	result, found = cache.Get("a")
	if !found {
		t.Error("Expected cache hit, got miss")
	}
	if !result {
		t.Errorf("Expected true, got %v", result)
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	cache, clock := newTestCache(t, CacheConfig{
		TTL:             100 * time.Millisecond,
		MaxEntries:      100,
		CleanupInterval: time.Minute,
	})

	cache.Set("a", true)
	if _, found := cache.Get("a"); !found {
		t.Error("Expected cache hit immediately after set")
	}

	clock.Advance(150 * time.Millisecond)
	if stats := cache.Stats(); stats.ExpiredEntries != 1 || stats.ActiveEntries != 0 {
		t.Errorf("Expected one expired entry, got %+v", stats)
	}
	if _, found := cache.Get("a"); found {
		t.Error("Expected cache miss after TTL expiration")
	}
	if stats := cache.Stats(); stats.TotalEntries != 0 {
		t.Errorf("Expected expired entry to be dropped on access, got %d entries", stats.TotalEntries)
	}
}

func TestCache_MaxEntriesEviction(t *testing.T) {
	cache, clock := newTestCache(t, CacheConfig{
		TTL:             5 * time.Minute,
		MaxEntries:      3,
		CleanupInterval: time.Minute,
	})

	for i := 0; i < 3; i++ {
		cache.Set(fmt.Sprintf("key-%d", i), true)
		clock.Advance(time.Second)
	}
	// Touch the oldest entry so key-1 becomes least recently used
	if _, found := cache.Get("key-0"); !found {
		t.Fatal("Expected key-0 to be present")
	}
	clock.Advance(time.Second)

	cache.Set("key-3", false)

	if stats := cache.Stats(); stats.TotalEntries != 3 {
		t.Errorf("Expected 3 entries after eviction, got %d", stats.TotalEntries)
	}
	if _, found := cache.Get("key-1"); found {
		t.Error("Expected least recently used entry to be evicted")
	}
	for _, key := range []string{"key-0", "key-2", "key-3"} {
		if _, found := cache.Get(key); !found {
			t.Errorf("Expected %s to survive eviction", key)
		}
	}
}

func TestCache_EvictionPrefersExpired(t *testing.T) {
	cache, clock := newTestCache(t, CacheConfig{
		TTL:             time.Minute,
		MaxEntries:      2,
		CleanupInterval: time.Hour,
	})

	cache.Set("old", true)
	clock.Advance(2 * time.Minute)
	cache.Set("b", true)
	cache.Set("c", true)

	if _, found := cache.Get("old"); found {
		t.Error("Expected expired entry to be removed first")
	}
	if stats := cache.Stats(); stats.TotalEntries != 2 {
		t.Errorf("Expected 2 entries, got %d", stats.TotalEntries)
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := NewCache[int](CacheConfig{
		TTL:             5 * time.Minute,
		MaxEntries:      100,
		CleanupInterval: time.Millisecond,
	})
	defer cache.Close()

	const numGoroutines = 10
	const operationsPerGoroutine = 100

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(goroutineID int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				key := fmt.Sprintf("key-%d", goroutineID*operationsPerGoroutine+j)
				if j%2 == 0 {
					cache.Set(key, j)
				} else {
					cache.Get(key)
					cache.Stats()
				}
			}
		}(i)
	}
	wg.Wait()

	if stats := cache.Stats(); stats.TotalEntries > 100 {
		t.Errorf("Expected at most 100 entries, got %d", stats.TotalEntries)
	}
	cache.Set("final", 42)
	if v, found := cache.Get("final"); !found || v != 42 {
		t.Error("Cache should still be functional after concurrent access")
	}
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	cache := NewCache[bool](CacheConfig{})
	cache.Set("a", true)
	cache.Close()
	cache.Close()
	if stats := cache.Stats(); stats.TotalEntries != 0 {
		t.Errorf("Expected empty cache after Close, got %d entries", stats.TotalEntries)
	}
}

func TestCacheKey(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	daily, err := rrule.Parse("FREQ=DAILY;INTERVAL=1;DTSTART=2024-01-01T10:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	weekly, err := rrule.Parse("FREQ=WEEKLY;INTERVAL=1;DTSTART=2024-01-01T10:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	base := Event{Start: start, End: start.Add(time.Hour), Rule: daily}
	from, to := start, start.AddDate(0, 1, 0)
	baseKey := cacheKey("expand", base, from, to, DefaultExpansionOptions)

	if again := cacheKey("expand", base, from, to, DefaultExpansionOptions); again != baseKey {
		t.Error("Expected identical inputs to produce identical keys")
	}

	variants := map[string]string{
		"operation": cacheKey("has", base, from, to, DefaultExpansionOptions),
		"rule":      cacheKey("expand", Event{Start: start, End: start.Add(time.Hour), Rule: weekly}, from, to, DefaultExpansionOptions),
		"no rule":   cacheKey("expand", Event{Start: start, End: start.Add(time.Hour)}, from, to, DefaultExpansionOptions),
		"end":       cacheKey("expand", Event{Start: start, End: start.Add(2 * time.Hour), Rule: daily}, from, to, DefaultExpansionOptions),
		"rdate":     cacheKey("expand", Event{Start: start, End: start.Add(time.Hour), Rule: daily, RDATE: []time.Time{to}}, from, to, DefaultExpansionOptions),
		"exdate":    cacheKey("expand", Event{Start: start, End: start.Add(time.Hour), Rule: daily, EXDATE: []time.Time{to}}, from, to, DefaultExpansionOptions),
		"range":     cacheKey("expand", base, from, to.Add(time.Second), DefaultExpansionOptions),
		"options":   cacheKey("expand", base, from, to, ExpansionOptions{MaxOccurrences: 1}),
	}
	seen := map[string]string{}
	for name, key := range variants {
		if key == baseKey {
			t.Errorf("Expected %s to change the key", name)
		}
		if other, dup := seen[key]; dup {
			t.Errorf("Expected %s and %s to produce different keys", name, other)
		}
		seen[key] = name
	}
}
