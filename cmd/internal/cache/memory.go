package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero = no expiry
}

// Memory is an in-process Client for development and tests.
type Memory struct {
	mu     sync.RWMutex
	data   map[string]memoryEntry
	prefix string
}

// NewMemory creates an in-memory cache.
func NewMemory(prefix string) *Memory {
	return &Memory{data: make(map[string]memoryEntry), prefix: prefix}
}

func (m *Memory) key(k string) string {
	if m.prefix == "" {
		return k
	}
	return m.prefix + ":" + k
}

// Get returns a value, lazily evicting expired entries.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	k := m.key(key)

	m.mu.RLock()
	e, ok := m.data[k]
	m.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(time.Now()) {
		m.mu.Lock()
		delete(m.data, k)
		m.mu.Unlock()
		return "", ErrNotFound
	}
	return e.value, nil
}

// Set stores a value with a TTL.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.data[m.key(key)] = e
	m.mu.Unlock()
	return nil
}

// Delete removes a key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, m.key(key))
	m.mu.Unlock()
	return nil
}

// Close is a no-op for the memory backend.
func (m *Memory) Close() error { return nil }
