package breaks

import (
	"sync"
	"time"
)

// DefaultCacheTTL keeps suggestions from shuffling on every refresh.
const DefaultCacheTTL = 24 * time.Hour

// Store memoizes break lists per scope and event fingerprint.
type Store interface {
	// Get returns the breaks stored for key if the fingerprint matches and the entry is fresh.
	Get(key, fingerprint string) ([]Break, bool)
	// Set replaces the entry for key.
	Set(key string, breaks []Break, fingerprint string)
}

type cacheEntry struct {
	breaks      []Break
	createdAt   time.Time
	fingerprint string
}

// MemoryCache is a process-local Store guarded by a single mutex.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates a cache with the given TTL. A non-positive TTL uses DefaultCacheTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the cache clock. Used by tests.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// TTL returns the configured time-to-live.
func (c *MemoryCache) TTL() time.Duration {
	return c.ttl
}

func (c *MemoryCache) Get(key, fingerprint string) ([]Break, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if entry == nil {
		delete(c.entries, key)
		return nil, false
	}
	// Events changed since the entry was written.
	if entry.fingerprint != fingerprint {
		delete(c.entries, key)
		return nil, false
	}
	if c.now().Sub(entry.createdAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}

	out := copyBreaks(entry.breaks)
	if out == nil {
		out = []Break{}
	}
	return out, true
}

func (c *MemoryCache) Set(key string, breaks []Break, fingerprint string) {
	entry := &cacheEntry{
		breaks:      copyBreaks(breaks),
		fingerprint: fingerprint,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entry.createdAt = c.now()
	c.entries[key] = entry
}

// Clear drops every entry.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// PurgeExpired removes expired entries and returns how many were dropped.
func (c *MemoryCache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	purged := 0
	for key, entry := range c.entries {
		if entry == nil || now.Sub(entry.createdAt) >= c.ttl {
			delete(c.entries, key)
			purged++
		}
	}
	return purged
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
