package flow

import (
	"context"
	"sync"
	"time"

	"github.com/lanternfest/portal/internal/adminrole"
	"github.com/lanternfest/portal/internal/intent"
	"github.com/lanternfest/portal/internal/profiles"
	"github.com/lanternfest/portal/internal/routes"
	"github.com/lanternfest/portal/internal/session"
	log "github.com/sirupsen/logrus"
)

// defaultNavDelay defers navigation slightly so a redirect never lands in
// the middle of the evaluation that produced it.
const defaultNavDelay = 50 * time.Millisecond

// RedirectFunc observes a fired redirect decision, e.g. for audit logging.
type RedirectFunc func(accountID uint64, target routes.Route, reason string)

// Controller evaluates the post-sign-in redirect for one browsing session.
// A latch guarantees at most one automatic redirect per authenticated
// session; it resets only when the identity becomes nil.
type Controller struct {
	ctx     context.Context
	intents intent.Store
	router  routes.Router
	scope   string

	navDelay   time.Duration
	onRedirect RedirectFunc

	mu          sync.Mutex
	snapshot    Snapshot
	latched     bool
	timers      []*time.Timer
	unsubscribe func()
	closed      bool
}

// Snapshot is the published view of the flow controller.
type Snapshot struct {
	Stage Stage
	Role  adminrole.Snapshot
}

// Option configures a Controller.
type Option func(*Controller)

// WithNavDelay overrides the deferred navigation delay.
func WithNavDelay(d time.Duration) Option {
	return func(c *Controller) { c.navDelay = d }
}

// WithRedirectObserver registers a callback for fired redirects.
func WithRedirectObserver(fn RedirectFunc) Option {
	return func(c *Controller) { c.onRedirect = fn }
}

// NewController constructs a flow controller for one browsing session scope.
func NewController(ctx context.Context, intents intent.Store, router routes.Router, scope string, opts ...Option) *Controller {
	c := &Controller{
		ctx:      ctx,
		intents:  intents,
		router:   router,
		scope:    scope,
		navDelay: defaultNavDelay,
		snapshot: Snapshot{Stage: StageSignUp},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attach subscribes the controller to a role store. The role store already
// runs after the session store, so every snapshot seen here is consistent.
func (c *Controller) Attach(roleStore *adminrole.Store) {
	c.mu.Lock()
	if c.unsubscribe != nil || c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	unsubscribe := roleStore.Subscribe(func(snapshot adminrole.Snapshot) {
		c.handleRole(snapshot)
	})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		unsubscribe()
		return
	}
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
}

// Snapshot returns the current stage and role state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Stage returns the current onboarding stage.
func (c *Controller) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.Stage
}

// Close releases the subscription and clears pending navigation timers.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	timers := c.timers
	c.timers = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	for _, timer := range timers {
		timer.Stop()
	}
}

// handleRole re-evaluates the stage and the one-shot redirect.
func (c *Controller) handleRole(role adminrole.Snapshot) {
	sess := role.Session

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.snapshot = Snapshot{Stage: StageOf(sess, role.Privileged), Role: role}

	if sess.Identity == nil {
		// The latch resets only here, so rapid state changes within one
		// authenticated session can never fire a second redirect.
		c.latched = false
		c.mu.Unlock()
		return
	}
	if sess.Loading || c.latched {
		c.mu.Unlock()
		return
	}
	c.latched = true
	c.mu.Unlock()

	target, reason := c.decide(sess, role)
	if c.onRedirect != nil {
		c.onRedirect(sess.Identity.ID, target, reason)
	}
	c.navigate(target)
}

// decide evaluates the strict redirect priority order. The stored
// completeness flag is trusted ahead of a fresh field recheck so a user the
// backend already considers complete is never bounced to profile setup.
func (c *Controller) decide(sess session.Snapshot, role adminrole.Snapshot) (routes.Route, string) {
	if !sess.Identity.EmailVerified {
		return routes.VerifyEmail, "email-unverified"
	}

	if role.Privileged {
		c.clearIntent()
		return routes.AdminDashboard, "privileged"
	}

	if sess.Profile != nil && sess.Profile.IsProfileComplete {
		if stored := c.takeIntent(); stored != nil {
			return *stored, "stored-intent"
		}
		return routes.Home, "stored-complete"
	}

	if sess.Profile == nil || !profiles.Complete(*sess.Profile) {
		return routes.ProfileSetup, "profile-incomplete"
	}

	return routes.Home, "fallback"
}

// takeIntent consumes the stored redirect intent, clearing it either way.
func (c *Controller) takeIntent() *routes.Route {
	stored, errGet := c.intents.Get(c.ctx, c.scope)
	if errGet != nil {
		log.WithError(errGet).Warnf("flow: read intent for scope %s", c.scope)
		stored = nil
	}
	c.clearIntent()
	return stored
}

// clearIntent drops any stored redirect intent. Failures are logged only.
func (c *Controller) clearIntent() {
	if errClear := c.intents.Clear(c.ctx, c.scope); errClear != nil {
		log.WithError(errClear).Warnf("flow: clear intent for scope %s", c.scope)
	}
}

// navigate fires the router after the deferral delay.
func (c *Controller) navigate(target routes.Route) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	timer := time.AfterFunc(c.navDelay, func() {
		c.router.Go(target)
	})
	c.timers = append(c.timers, timer)
	c.mu.Unlock()
}
