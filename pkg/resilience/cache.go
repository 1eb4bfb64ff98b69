package resilience

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// resultCache is a bounded in-memory TTL cache for successful tool results,
// keyed by hash(tool name + canonical args). Expired entries are evicted on
// read; when the cache is full, the entry closest to expiry is evicted.
type resultCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]cacheEntry

	// now is stubbed in tests
	now func() time.Time
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

func newResultCache(ttl time.Duration, maxEntries int) *resultCache {
	return &resultCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]cacheEntry),
		now:        time.Now,
	}
}

// CacheKey builds the cache key for a tool invocation. encoding/json sorts
// map keys, so equal argument maps always produce equal keys.
func CacheKey(toolName string, args map[string]any) string {
	encoded, err := json.Marshal(args)
	if err != nil {
		// Tool args come from JSON in the first place; this path is for
		// defensive completeness only.
		encoded = []byte(toolName)
	}

	sum := sha256.Sum256(append([]byte(toolName+":"), encoded...))
	return hex.EncodeToString(sum[:])
}

// Get retrieves a cached result. Returns false if the key is absent or the
// entry has expired; expired entries are deleted.
func (c *resultCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

// Put stores a result with the configured TTL, evicting the entry closest to
// expiry if the cache is at capacity.
func (c *resultCache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictSoonest()
	}

	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Len returns the number of entries currently stored, expired or not.
func (c *resultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictSoonest removes the entry with the earliest expiry. Caller holds the lock.
func (c *resultCache) evictSoonest() {
	var victim string
	var soonest time.Time
	for key, entry := range c.entries {
		if victim == "" || entry.expiresAt.Before(soonest) {
			victim = key
			soonest = entry.expiresAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}
