// Package cache provides small thread-safe caching utilities with
// time-based expiration.
package cache

import (
	"sync"
	"time"
)

// TTLValue holds a single value that expires after a fixed duration.
// It starts empty (expired) until the first Set.
type TTLValue[T any] struct {
	mu        sync.RWMutex
	value     T
	timestamp time.Time
	ttl       time.Duration
}

// NewTTL creates an empty TTLValue with the given lifetime.
func NewTTL[T any](ttl time.Duration) *TTLValue[T] {
	return &TTLValue[T]{ttl: ttl}
}

// Get returns the cached value and true when it is still fresh.
func (c *TTLValue[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.timestamp.IsZero() || time.Since(c.timestamp) >= c.ttl {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Set stores a value and restarts the TTL timer.
func (c *TTLValue[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.timestamp = time.Now()
}

// Invalidate drops the cached value, forcing the next Get to miss.
func (c *TTLValue[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value = zero
	c.timestamp = time.Time{}
}
