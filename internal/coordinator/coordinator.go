// Package coordinator assembles the per-browsing-session state machinery:
// session store, role store, and flow controller, wired in that order so
// derivations always run against published state.
package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/lanternfest/portal/internal/adminrole"
	"github.com/lanternfest/portal/internal/audit"
	"github.com/lanternfest/portal/internal/flow"
	"github.com/lanternfest/portal/internal/identity"
	"github.com/lanternfest/portal/internal/intent"
	"github.com/lanternfest/portal/internal/models"
	"github.com/lanternfest/portal/internal/profiles"
	"github.com/lanternfest/portal/internal/routes"
	"github.com/lanternfest/portal/internal/session"
	"github.com/lanternfest/portal/internal/settings"
	log "github.com/sirupsen/logrus"
)

// Coordinator owns the state machinery for one browsing session.
type Coordinator struct {
	Scope    string
	Provider identity.Provider
	Sessions *session.Store
	Roles    *adminrole.Store
	Flow     *flow.Controller
	Router   *routes.MemoryRouter

	mu       sync.Mutex
	lastSeen time.Time
}

// Touch records activity for idle sweeping.
func (c *Coordinator) Touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

// idleSince reports the last activity time.
func (c *Coordinator) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// close tears down subscriptions and timers in reverse wiring order.
func (c *Coordinator) close() {
	c.Flow.Close()
	c.Roles.Close()
	c.Sessions.Close()
}

// Registry tracks live coordinators keyed by browsing-session scope.
type Registry struct {
	ctx      context.Context
	hub      *identity.LocalHub
	profiles profiles.Store
	details  adminrole.DetailStore
	intents  intent.Store
	recorder *audit.Recorder

	mu    sync.Mutex
	items map[string]*Coordinator
}

// NewRegistry constructs a Registry over shared collaborators.
func NewRegistry(ctx context.Context, hub *identity.LocalHub, profileStore profiles.Store, details adminrole.DetailStore, intents intent.Store, recorder *audit.Recorder) *Registry {
	return &Registry{
		ctx:      ctx,
		hub:      hub,
		profiles: profileStore,
		details:  details,
		intents:  intents,
		recorder: recorder,
		items:    make(map[string]*Coordinator),
	}
}

// Get returns the coordinator for a scope, wiring a new one on first use.
func (r *Registry) Get(scope string) *Coordinator {
	r.mu.Lock()
	if coord, ok := r.items[scope]; ok {
		r.mu.Unlock()
		coord.Touch()
		return coord
	}
	r.mu.Unlock()

	coord := r.build(scope)

	r.mu.Lock()
	if existing, ok := r.items[scope]; ok {
		r.mu.Unlock()
		coord.close()
		existing.Touch()
		return existing
	}
	r.items[scope] = coord
	r.mu.Unlock()
	return coord
}

// build wires one coordinator. Subscription order is the ordering
// guarantee: roles attach to sessions before the flow attaches to roles,
// and the session store starts last.
func (r *Registry) build(scope string) *Coordinator {
	provider := r.hub.Session(scope)
	router := routes.NewMemoryRouter(routes.SignUp)

	sessions := session.New(r.ctx, provider, r.profiles)
	roles := adminrole.New(r.ctx, r.details)
	controller := flow.NewController(r.ctx, r.intents, router, scope,
		flow.WithRedirectObserver(func(accountID uint64, target routes.Route, reason string) {
			if r.recorder == nil {
				return
			}
			id := accountID
			r.recorder.Record(models.AuditRedirect, &id, map[string]any{
				"target": target.String(),
				"reason": reason,
				"scope":  scope,
			})
		}),
	)

	roles.Attach(sessions)
	controller.Attach(roles)
	sessions.Start()

	coord := &Coordinator{
		Scope:    scope,
		Provider: provider,
		Sessions: sessions,
		Roles:    roles,
		Flow:     controller,
		Router:   router,
	}
	coord.Touch()
	return coord
}

// Remove tears down one scope.
func (r *Registry) Remove(scope string) {
	r.mu.Lock()
	coord, ok := r.items[scope]
	delete(r.items, scope)
	r.mu.Unlock()

	if ok {
		coord.close()
	}
	r.hub.Drop(scope)
}

// Sweep removes coordinators idle longer than maxIdle and returns how many
// were dropped.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	var stale []string
	for scope, coord := range r.items {
		if coord.idleSince().Before(cutoff) {
			stale = append(stale, scope)
		}
	}
	r.mu.Unlock()

	for _, scope := range stale {
		r.Remove(scope)
	}
	return len(stale)
}

// RunSweeper periodically sweeps idle coordinators until the context ends.
// The cadence comes from DB-backed settings and is re-read each cycle.
func (r *Registry) RunSweeper(ctx context.Context) {
	for {
		interval := time.Duration(settings.Int(settings.SessionSweepIntervalSecondsKey, settings.DefaultSessionSweepIntervalSeconds)) * time.Second
		if interval <= 0 {
			interval = time.Duration(settings.DefaultSessionSweepIntervalSeconds) * time.Second
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
		if dropped := r.Sweep(4 * interval); dropped > 0 {
			log.Infof("coordinator: swept %d idle sessions", dropped)
		}
	}
}

// Close tears down every coordinator.
func (r *Registry) Close() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*Coordinator)
	r.mu.Unlock()

	for scope, coord := range items {
		coord.close()
		r.hub.Drop(scope)
	}
}
