// Package cache provides response cache backends for catalog clients:
// process memory, the local SQLite database and Redis.
package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	body      []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory is a process-lifetime cache. A zero TTL keeps entries until the
// cache is discarded.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an in-memory cache.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the body stored under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	now := m.now()
	if e.expired(now) {
		m.mu.Lock()
		// A Set may have replaced the entry since the read lock was released.
		if cur, ok := m.entries[key]; ok && cur.expired(now) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.body, true, nil
}

// Set stores body under key.
func (m *Memory) Set(_ context.Context, key string, body []byte) error {
	e := memoryEntry{body: append([]byte(nil), body...)}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
