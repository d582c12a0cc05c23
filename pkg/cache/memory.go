package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache keeps entries in a map guarded by a mutex.
// Expired entries are removed when they are read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   Clock
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache creates an empty in-memory cache. A nil clock uses
// time.Now.
func NewMemoryCache(clock Clock) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		clock:   clock,
	}
}

// Get returns a copy of the stored value.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if !e.expiresAt.IsZero() && !c.clock.Now().Before(e.expiresAt) {
		c.mu.Lock()
		// Another writer may have replaced the entry in between.
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), e.data...), true, nil
}

// Set stores a copy of data.
func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	e := memoryEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expiresAt = c.clock.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(context.Context) error {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close does nothing.
func (c *MemoryCache) Close() error { return nil }

// Name returns "memory".
func (c *MemoryCache) Name() string { return BackendMemory }

var (
	_ Cache   = (*MemoryCache)(nil)
	_ Clearer = (*MemoryCache)(nil)
)
