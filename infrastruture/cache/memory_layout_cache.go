package cache

import (
	"context"
	"sync"
	"time"

	"github.com/arcade-cabinet/beppo-laughs/service/i"
)

var _ i.LayoutCache = &MemoryLayoutCache{}

type entry struct {
	value   []byte
	expires time.Time
}

// MemoryLayoutCache is the single-process LayoutCache used when no redis is
// configured.
type MemoryLayoutCache struct {
	entries map[string]entry
	locks   map[string]*sync.Mutex
	now     func() time.Time
	mu      sync.Mutex
}

// NewMemoryLayoutCache creates an empty cache.
func NewMemoryLayoutCache() *MemoryLayoutCache {
	return &MemoryLayoutCache{
		entries: make(map[string]entry),
		locks:   make(map[string]*sync.Mutex),
		now:     time.Now,
	}
}

// Get implements i.LayoutCache.
func (c *MemoryLayoutCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, i.ErrCacheMiss
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		delete(c.entries, key)
		return nil, i.ErrCacheMiss
	}
	return e.value, nil
}

// Set implements i.LayoutCache. A non-positive ttl never expires.
func (c *MemoryLayoutCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

// Lock implements i.LayoutCache.
func (c *MemoryLayoutCache) Lock(ctx context.Context, key string) (func(), error) {
	c.mu.Lock()
	m, ok := c.locks[key]
	if !ok {
		m = &sync.Mutex{}
		c.locks[key] = m
	}
	c.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		m.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
		return m.Unlock, nil
	case <-ctx.Done():
		// Release the lock once the waiter gets it, nobody else will.
		go func() {
			<-acquired
			m.Unlock()
		}()
		return nil, ctx.Err()
	}
}
