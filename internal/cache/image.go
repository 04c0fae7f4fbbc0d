package cache

import (
	"sync"
	"time"

	"logoden/internal/logo"
)

// Default sizing for the image payload cache.
const (
	DefaultImageCapacity = 20
	DefaultImageTTL      = 5 * time.Minute
)

type imageEntry struct {
	payload    *logo.Payload
	insertedAt time.Time
	expiresAt  time.Time
}

// ImageCache is a bounded, TTL-based cache for decoded logo payloads, keyed
// by logo id. Eviction is oldest-inserted-first and happens lazily on Put;
// expired entries are treated as absent on Get but are not swept in the
// background.
type ImageCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]imageEntry

	// now is overridable in tests
	now func() time.Time
}

// NewImageCache creates a cache holding at most capacity entries, each
// living for ttl after insertion. Non-positive arguments fall back to the
// defaults.
func NewImageCache(capacity int, ttl time.Duration) *ImageCache {
	if capacity <= 0 {
		capacity = DefaultImageCapacity
	}
	if ttl <= 0 {
		ttl = DefaultImageTTL
	}
	return &ImageCache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]imageEntry),
		now:      time.Now,
	}
}

// Get returns the cached payload for id, or (nil, false) on a miss. An
// entry past its expiry is a miss even though it still resides in the map;
// it is replaced lazily by the next Put for the same key.
func (c *ImageCache) Get(id string) (*logo.Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.payload, true
}

// Put stores a payload under id. Overwriting an existing key never evicts.
// Inserting a new key at capacity first removes the entry with the oldest
// insertedAt (ties broken by map iteration order).
func (c *ImageCache) Put(id string, payload *logo.Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[id]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}

	now := c.now()
	c.entries[id] = imageEntry{
		payload:    payload,
		insertedAt: now,
		expiresAt:  now.Add(c.ttl),
	}
}

// Len returns the number of physically held entries, expired or not.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Contains reports whether id physically resides in the map, regardless of
// expiry.
func (c *ImageCache) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

func (c *ImageCache) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	first := true
	for id, e := range c.entries {
		if first || e.insertedAt.Before(oldest) {
			oldestID = id
			oldest = e.insertedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestID)
	}
}
