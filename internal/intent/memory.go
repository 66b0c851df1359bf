package intent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/lanternfest/portal/internal/routes"
)

// memoryEntry holds one stored intent with its expiry.
type memoryEntry struct {
	route   routes.Route
	expires time.Time
}

// MemoryStore keeps redirect intents in process memory. Used for tests and
// single-node deployments without redis.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryEntry
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryEntry)}
}

// Get returns the pending target for a scope, or nil when absent.
func (s *MemoryStore) Get(_ context.Context, scope string) (*routes.Route, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[scope]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expires) {
		delete(s.items, scope)
		return nil, nil
	}
	route := entry.route
	return &route, nil
}

// Set records the pending target for a scope, replacing any prior one.
func (s *MemoryStore) Set(_ context.Context, scope string, route routes.Route) error {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return errors.New("intent: empty scope")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[scope] = memoryEntry{route: route, expires: time.Now().Add(ttl())}
	return nil
}

// Clear removes the pending target for a scope.
func (s *MemoryStore) Clear(_ context.Context, scope string) error {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, scope)
	return nil
}
