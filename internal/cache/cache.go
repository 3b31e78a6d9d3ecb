// Package cache provides a TTL key-value cache abstraction with a
// Badger-backed implementation for production and an in-memory one for tests.
//
// The cache is injected into services rather than accessed as a process-wide
// singleton, so the backing store can be swapped without touching caller
// logic.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry time-to-live.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. The second return value reports whether
	// a fresh entry was found; expired entries count as absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl. A non-positive ttl is invalid.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// memoryEntry holds a cached value with its expiry deadline.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a map-backed Cache for tests and single-process development.
// Expired entries are dropped lazily on read.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Cache.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set implements Cache.
func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{
		value:     value,
		expiresAt: m.now().Add(ttl),
	}
	return nil
}

// Delete implements Cache.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// SetClock overrides the time source. Test helper.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}
