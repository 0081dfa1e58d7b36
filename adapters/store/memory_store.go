package store

import (
	"context"
	"sync"
	"time"

	"github.com/gebeta-eats/payflow/ports"
)

type entry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// MemoryStore is an in-memory implementation of the Store interface. Expired
// entries are evicted lazily on read.
type MemoryStore struct {
	scopes map[ports.Scope]map[string]entry
	mu     sync.RWMutex
	now    func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scopes: make(map[ports.Scope]map[string]entry),
		now:    time.Now,
	}
}

// Set writes a value under the scope, replacing any previous value
func (s *MemoryStore) Set(ctx context.Context, scope ports.Scope, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, ok := s.scopes[scope]
	if !ok {
		keys = make(map[string]entry)
		s.scopes[scope] = keys
	}

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	keys[key] = e

	return nil
}

// Get retrieves a value, deleting it as a side effect when expired
func (s *MemoryStore) Get(ctx context.Context, scope ports.Scope, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, ok := s.scopes[scope]
	if !ok {
		return "", ports.ErrNotFound
	}

	e, ok := keys[key]
	if !ok {
		return "", ports.ErrNotFound
	}

	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(keys, key)
		return "", ports.ErrNotFound
	}

	return e.value, nil
}

// Delete removes a key; deleting a missing key is a no-op
func (s *MemoryStore) Delete(ctx context.Context, scope ports.Scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keys, ok := s.scopes[scope]; ok {
		delete(keys, key)
	}

	return nil
}

// Ping always reports the store as usable
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// SetNowFunc overrides the clock. For tests.
func (s *MemoryStore) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
