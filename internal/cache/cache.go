// Package cache provides TTL caches for provider answers and feed data
package cache

import (
	"context"
	"sync"
	"time"
)

// Store is a byte-level cache shared by the provider decorators. A miss is
// (nil, false, nil); errors are reserved for a broken backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// item wraps a cached value with its expiration time
type item[T any] struct {
	value     T
	expiresAt time.Time
}

// Cache is a generic thread-safe cache with TTL expiration
type Cache[T any] struct {
	items map[string]item[T]
	mu    sync.RWMutex
	ttl   time.Duration
	stop  chan struct{}
	once  sync.Once
}

// New creates a cache with the specified TTL
func New[T any](ttl time.Duration) *Cache[T] {
	c := &Cache[T]{
		items: make(map[string]item[T]),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Get retrieves a value, returning (value, true) if found and not expired
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || time.Now().After(item.expiresAt) {
		var zero T
		return zero, false
	}
	return item.value, true
}

// Set stores a value with the cache's TTL
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item[T]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Size returns the number of items (including expired)
func (c *Cache[T]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the background cleanup goroutine. It is safe to call twice.
func (c *Cache[T]) Close() {
	c.once.Do(func() { close(c.stop) })
}

// cleanup runs periodically to remove expired items
func (c *Cache[T]) cleanup() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache[T]) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}

// Memory is an in-process Store
type Memory struct {
	cache *Cache[[]byte]
}

// NewMemory creates an in-process store whose entries live for ttl
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{cache: New[[]byte](ttl)}
}

// Get implements Store
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.cache.Get(key)
	return v, ok, nil
}

// Set implements Store
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.cache.Set(key, value)
	return nil
}

// Close stops the expiry sweeper
func (m *Memory) Close() error {
	m.cache.Close()
	return nil
}
