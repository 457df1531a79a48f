package realtime

import (
	"sync"
	"time"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
)

// DefaultTTL is how long a fetched payload is served without refetching
const DefaultTTL = 20 * time.Second

// Entry is a cached payload and the instant it was stored
type Entry struct {
	Payload  game.Payload
	StoredAt time.Time
}

// Cache holds the last successful payload per (reference, kind). Entries
// are never evicted on expiry: an expired entry is still the stale fallback.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
}

// NewCache creates an empty cache with the given TTL
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
	}
}

// Fresh returns the entry for key if it is younger than the TTL at now
func (c *Cache) Fresh(key string, now time.Time) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || now.Sub(e.StoredAt) >= c.ttl {
		return Entry{}, false
	}
	return e, true
}

// Last returns the entry for key regardless of age
func (c *Cache) Last(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	return e, ok
}

// Set stores payload for key, replacing any previous entry
func (c *Cache) Set(key string, payload game.Payload, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry{Payload: payload, StoredAt: at}
}

// Size returns the number of cached entries
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cacheKey generates a cache key from the detail reference and kind
func cacheKey(reference string, kind game.Kind) string {
	return string(kind) + "|" + reference
}
