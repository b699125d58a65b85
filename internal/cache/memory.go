// Package cache provides the result cache behind the pipeline's
// cache-check stage: an in-process store for single-node deployments
// and a Postgres store for shared ones.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fairwaylabs/linkresolver/internal/resolve"
)

// MemoryStore is an in-process TTL cache keyed by normalized-URL hash.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	entry     resolve.CacheEntry
	expiresAt time.Time
}

// sweepThreshold bounds how large the map grows before expired
// entries are collected on write.
const sweepThreshold = 1000

// NewMemoryStore creates a memory cache with the given entry lifetime.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the live entry for key, counting the hit.
func (s *MemoryStore) Get(_ context.Context, key string) (resolve.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || s.now().After(e.expiresAt) {
		if ok {
			delete(s.entries, key)
		}
		return resolve.CacheEntry{}, resolve.ErrCacheMiss
	}
	e.entry.Hits++
	s.entries[key] = e
	return e.entry, nil
}

// Put upserts an entry, resetting its lifetime.
func (s *MemoryStore) Put(_ context.Context, entry resolve.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.Key] = memoryEntry{
		entry:     entry,
		expiresAt: s.now().Add(s.ttl),
	}

	if len(s.entries) > sweepThreshold {
		now := s.now()
		for k, v := range s.entries {
			if now.After(v.expiresAt) {
				delete(s.entries, k)
			}
		}
	}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
