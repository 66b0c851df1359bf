// Package session tracks the authentication state of one browsing session.
// The store is the single writer for its state; identity events, profile
// fetches and manual refreshes are serialized, and subscribers are notified
// synchronously in registration order so downstream derivations never run
// against an unpublished state.
package session

import (
	"context"
	"sync"

	"github.com/lanternfest/portal/internal/identity"
	"github.com/lanternfest/portal/internal/models"
	"github.com/lanternfest/portal/internal/profiles"
	log "github.com/sirupsen/logrus"
)

// EventKind tags a published session event.
type EventKind int

// Session event kinds.
const (
	// EventIdentityChanged fires when the provider pushes a new identity.
	EventIdentityChanged EventKind = iota
	// EventProfileSettled fires when a profile fetch completes.
	EventProfileSettled
	// EventSignedOut fires when the identity becomes nil.
	EventSignedOut
)

// Snapshot is the published view of one session's state.
type Snapshot struct {
	Identity *identity.Identity
	Profile  *models.Profile
	// Loading is true from subscription start until the first profile
	// fetch settles, success or failure.
	Loading bool
}

// Event is a typed session change notification.
type Event struct {
	Kind     EventKind
	Snapshot Snapshot
}

// Store owns the cached identity and profile for one browsing session.
type Store struct {
	provider identity.Provider
	profiles profiles.Store

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	identity    *identity.Identity
	profile     *models.Profile
	loading     bool
	unsubscribe func()
	nextSubID   int
	subscribers []subscriber
	closed      bool
}

// subscriber pairs a callback with its registration order.
type subscriber struct {
	id int
	fn func(Event)
}

// New constructs a session store bound to a provider and profile store.
// Call Start to begin receiving identity events.
func New(ctx context.Context, provider identity.Provider, profileStore profiles.Store) *Store {
	storeCtx, cancel := context.WithCancel(ctx)
	return &Store{
		provider: provider,
		profiles: profileStore,
		ctx:      storeCtx,
		cancel:   cancel,
		loading:  true,
	}
}

// Start subscribes to the identity provider. The provider pushes the
// current identity immediately, so the first event settles the initial
// loading state.
func (s *Store) Start() {
	s.mu.Lock()
	if s.closed || s.unsubscribe != nil {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	unsubscribe := s.provider.Subscribe(func(id *identity.Identity) {
		s.handleIdentity(id)
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		unsubscribe()
		return
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
}

// Subscribe registers an event callback and returns an unsubscribe.
// Callbacks run synchronously in registration order.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns the current published state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Refresh re-fetches the profile for the current identity. This is the
// manual retry entry point; fetch failures are still absorbed.
func (s *Store) Refresh() {
	s.mu.Lock()
	current := s.identity
	s.mu.Unlock()
	if current == nil {
		return
	}
	s.fetchAndPublish(current)
}

// Close releases the provider subscription and stops publishing.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.subscribers = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	s.cancel()
}

// handleIdentity processes one provider push.
func (s *Store) handleIdentity(id *identity.Identity) {
	if id == nil {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.identity = nil
		s.profile = nil
		s.loading = false
		event := Event{Kind: EventSignedOut, Snapshot: s.snapshotLocked()}
		subs := s.subscribersLocked()
		s.mu.Unlock()
		publish(subs, event)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.identity = id
	s.loading = true
	event := Event{Kind: EventIdentityChanged, Snapshot: s.snapshotLocked()}
	subs := s.subscribersLocked()
	s.mu.Unlock()
	publish(subs, event)

	s.fetchAndPublish(id)
}

// fetchAndPublish loads the profile, applies drift healing, and publishes
// the settled state. Fetch failures leave the prior profile in place.
func (s *Store) fetchAndPublish(id *identity.Identity) {
	profile, errGet := s.profiles.Get(s.ctx, id.ID)
	if errGet != nil {
		log.WithError(errGet).Warnf("session: profile fetch for account %d", id.ID)
		s.settle(EventProfileSettled, nil, false)
		return
	}
	if profile == nil {
		s.settle(EventProfileSettled, nil, true)
		return
	}

	// Verified-flag drift: the provider is authoritative. Write the
	// corrected flag back and refetch so the published profile reflects it.
	if profile.EmailVerified != id.EmailVerified {
		if errHeal := s.profiles.Update(s.ctx, id.ID, map[string]any{"email_verified": id.EmailVerified}); errHeal != nil {
			log.WithError(errHeal).Warnf("session: heal verified flag for account %d", id.ID)
		} else if refetched, errRefetch := s.profiles.Get(s.ctx, id.ID); errRefetch == nil && refetched != nil {
			profile = refetched
		}
	}

	// Completeness drift: correct the stored flag as a side effect of the
	// read. The snapshot keeps the as-read value for this cycle; only the
	// next read observes the correction.
	computed := profiles.Complete(*profile)
	if profile.IsProfileComplete != computed {
		if errHeal := s.profiles.Update(s.ctx, id.ID, map[string]any{"is_profile_complete": computed}); errHeal != nil {
			log.WithError(errHeal).Warnf("session: heal completeness flag for account %d", id.ID)
		}
	}

	s.settle(EventProfileSettled, profile, true)
}

// settle stores a fetch outcome and publishes it.
func (s *Store) settle(kind EventKind, profile *models.Profile, replace bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if replace {
		s.profile = profile
	}
	s.loading = false
	event := Event{Kind: kind, Snapshot: s.snapshotLocked()}
	subs := s.subscribersLocked()
	s.mu.Unlock()
	publish(subs, event)
}

// snapshotLocked builds a copy-safe snapshot. Caller holds the lock.
func (s *Store) snapshotLocked() Snapshot {
	snapshot := Snapshot{Loading: s.loading}
	if s.identity != nil {
		copied := *s.identity
		snapshot.Identity = &copied
	}
	if s.profile != nil {
		copied := *s.profile
		snapshot.Profile = &copied
	}
	return snapshot
}

// subscribersLocked copies the subscriber list. Caller holds the lock.
func (s *Store) subscribersLocked() []subscriber {
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	return subs
}

// publish invokes callbacks in registration order.
func publish(subs []subscriber, event Event) {
	for _, sub := range subs {
		sub.fn(event)
	}
}
