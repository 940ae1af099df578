package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tilehaus/storefront-api/pkg/cache"
)

// MemStore is an in-memory replacement for the Redis store, for unit
// tests that must run without a Redis instance. It satisfies
// catalog.Store.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry

	// FailReads / FailWrites force every operation of that kind to
	// return ErrStoreDown.
	FailReads  bool
	FailWrites bool
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// ErrStoreDown simulates a backing-store outage.
var ErrStoreDown = errStoreDown{}

type errStoreDown struct{}

func (errStoreDown) Error() string { return "backing store down" }

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]memEntry)}
}

// Len returns the number of live entries.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		if time.Now().Before(e.expiresAt) {
			n++
		}
	}
	return n
}

// Get implements catalog.Store.
func (s *MemStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailReads {
		return nil, ErrStoreDown
	}
	entry, ok := s.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, cache.ErrCacheMiss
	}
	return entry.data, nil
}

// Set implements catalog.Store.
func (s *MemStore) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return ErrStoreDown
	}
	s.entries[key] = memEntry{data: data, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Delete implements catalog.Store.
func (s *MemStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return ErrStoreDown
	}
	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

// Keys implements catalog.Store for simple "prefix*" patterns.
func (s *MemStore) Keys(_ context.Context, pattern string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailReads {
		return nil, ErrStoreDown
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for key, entry := range s.entries {
		if strings.HasPrefix(key, prefix) && time.Now().Before(entry.expiresAt) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// MGet implements catalog.Store.
func (s *MemStore) MGet(_ context.Context, keys ...string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailReads {
		return nil, ErrStoreDown
	}
	results := make([][]byte, len(keys))
	for i, key := range keys {
		if entry, ok := s.entries[key]; ok && time.Now().Before(entry.expiresAt) {
			results[i] = entry.data
		}
	}
	return results, nil
}

// DeleteByPattern implements catalog.Store.
func (s *MemStore) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	keys, err := s.Keys(ctx, pattern)
	if err != nil {
		return 0, err
	}
	if err := s.Delete(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}
