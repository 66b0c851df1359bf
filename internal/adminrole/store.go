// Package adminrole derives role and capability facts from the session
// state. The store publishes an optimistic privileged flag before the slower
// admin detail fetch settles so guards never flash an unauthorized state for
// an already-role-gated identity.
package adminrole

import (
	"context"
	"sync"
	"time"

	"github.com/lanternfest/portal/internal/models"
	"github.com/lanternfest/portal/internal/permissions"
	"github.com/lanternfest/portal/internal/session"
	"github.com/lanternfest/portal/internal/settings"
	log "github.com/sirupsen/logrus"
)

// AdminProfile is the hydrated admin record used by guards and handlers.
type AdminProfile struct {
	AccountID      uint64
	Role           string
	Level          string
	Department     string
	Responsibility string
	// Permissions is always derived through the permission matrix or the
	// fallback synthesis; it is never edited directly.
	Permissions permissions.Set
	// GrantedKeys mirrors the stored explicit key list for display.
	GrantedKeys []string
	// Fallback marks a profile synthesized after a failed detail fetch.
	Fallback  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot is the published view of the role store.
type Snapshot struct {
	// Privileged is the optimistic admin/super-admin flag. It settles
	// before Admin does.
	Privileged bool
	Loading    bool
	Admin      *AdminProfile
	// Session is the session snapshot this derivation was computed from.
	Session session.Snapshot
}

// Store derives role facts from session changes.
type Store struct {
	details DetailStore
	ctx     context.Context

	mu          sync.Mutex
	snapshot    Snapshot
	nextSubID   int
	subscribers []subscriber
	timer       *time.Timer
	fetchSeq    int
	closed      bool
	unsubscribe func()
}

// subscriber pairs a callback with its registration order.
type subscriber struct {
	id int
	fn func(Snapshot)
}

// New constructs a role store reading admin details from the given store.
func New(ctx context.Context, details DetailStore) *Store {
	return &Store{
		details:  details,
		ctx:      ctx,
		snapshot: Snapshot{Loading: true},
	}
}

// Attach subscribes the role store to a session store. Role derivation runs
// inside the session store's ordered publish, so it always sees the
// just-published state.
func (s *Store) Attach(sessions *session.Store) {
	s.mu.Lock()
	if s.unsubscribe != nil || s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	unsubscribe := sessions.Subscribe(func(event session.Event) {
		s.handleSession(event.Snapshot)
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

// Subscribe registers a snapshot callback and returns an unsubscribe.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
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
	return s.snapshot
}

// Close releases the session subscription and pending timers.
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
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// handleSession recomputes role facts for one session change.
func (s *Store) handleSession(sess session.Snapshot) {
	// Invalidate any in-flight detail fetch from a prior session state.
	s.mu.Lock()
	s.fetchSeq++
	s.mu.Unlock()

	if sess.Identity == nil || sess.Profile == nil {
		s.stopTimerAndPublish(Snapshot{Privileged: false, Loading: false, Session: sess})
		return
	}

	role := sess.Profile.Role
	if models.IsPrivilegedRole(role) {
		// Publish the privileged flag before the detail fetch so guards
		// never see an unauthorized split second while it is in flight.
		s.stopTimerAndPublish(Snapshot{Privileged: true, Loading: false, Session: sess})
		s.fetchDetail(sess, role, true)
		return
	}

	if role == models.RoleModerator {
		s.armTimeout(sess)
		s.fetchDetail(sess, role, false)
		return
	}

	s.stopTimerAndPublish(Snapshot{Privileged: false, Loading: false, Session: sess})
}

// fetchDetail loads the admin detail row and publishes the hydrated or
// synthesized profile. Failures drive fallback synthesis, never an error.
func (s *Store) fetchDetail(sess session.Snapshot, role string, privileged bool) {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	detail, errGet := s.details.Get(s.ctx, sess.Identity.ID)
	if errGet != nil {
		log.WithError(errGet).Warnf("adminrole: detail fetch for account %d", sess.Identity.ID)
	}

	var admin *AdminProfile
	if errGet != nil || detail == nil {
		admin = synthesizeFallback(sess, role)
	} else {
		admin = hydrate(detail)
	}

	s.mu.Lock()
	if s.closed || seq != s.fetchSeq {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.stopTimerAndPublish(Snapshot{Privileged: privileged, Loading: false, Admin: admin, Session: sess})
}

// armTimeout forces loading false after the configured deadline so the
// caller never hangs on a slow detail fetch.
func (s *Store) armTimeout(sess session.Snapshot) {
	deadline := time.Duration(settings.Int(settings.RoleFetchTimeoutSecondsKey, settings.DefaultRoleFetchTimeoutSeconds)) * time.Second

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.snapshot = Snapshot{Privileged: false, Loading: true, Session: sess}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(deadline, func() {
		s.mu.Lock()
		if s.closed || !s.snapshot.Loading {
			s.mu.Unlock()
			return
		}
		s.snapshot.Loading = false
		snapshot := s.snapshot
		subs := s.subscribersLocked()
		s.mu.Unlock()
		notify(subs, snapshot)
	})
	snapshot := s.snapshot
	subs := s.subscribersLocked()
	s.mu.Unlock()
	notify(subs, snapshot)
}

// stopTimerAndPublish cancels any pending timeout and publishes a snapshot.
func (s *Store) stopTimerAndPublish(snapshot Snapshot) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.snapshot = snapshot
	subs := s.subscribersLocked()
	s.mu.Unlock()
	notify(subs, snapshot)
}

// subscribersLocked copies the subscriber list. Caller holds the lock.
func (s *Store) subscribersLocked() []subscriber {
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	return subs
}

// notify invokes callbacks in registration order.
func notify(subs []subscriber, snapshot Snapshot) {
	for _, sub := range subs {
		sub.fn(snapshot)
	}
}

// hydrate converts a detail row into an AdminProfile with its capability
// set computed through the matrix.
func hydrate(detail *models.AdminDetail) *AdminProfile {
	return &AdminProfile{
		AccountID:      detail.AccountID,
		Role:           detail.Role,
		Level:          detail.AdminLevel,
		Department:     detail.Department,
		Responsibility: detail.Responsibility,
		Permissions:    permissions.Matrix(detail.Role, detail.AdminLevel),
		GrantedKeys:    permissions.ParseStored(detail.Permissions),
		CreatedAt:      detail.CreatedAt,
		UpdatedAt:      detail.UpdatedAt,
	}
}

// synthesizeFallback builds an AdminProfile from the base profile when the
// detail record is missing or unreadable. The role check already gated
// access, so privileged roles fail open with every capability; moderators
// get the matrix defaults for their role.
func synthesizeFallback(sess session.Snapshot, role string) *AdminProfile {
	set := permissions.All()
	if !models.IsPrivilegedRole(role) {
		set = permissions.Matrix(role, models.LevelSenior)
	}
	now := time.Now().UTC()
	return &AdminProfile{
		AccountID:   sess.Identity.ID,
		Role:        role,
		Level:       models.LevelSenior,
		Permissions: set,
		GrantedKeys: set.Keys(),
		Fallback:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
