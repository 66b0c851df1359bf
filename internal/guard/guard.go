// Package guard evaluates render-time access decisions. Guards are pure:
// they return a Decision value and never navigate themselves; the calling
// shell executes any redirect outside the render pass, after a deferral.
package guard

import (
	"github.com/lanternfest/portal/internal/adminrole"
	"github.com/lanternfest/portal/internal/permissions"
	"github.com/lanternfest/portal/internal/profiles"
	"github.com/lanternfest/portal/internal/routes"
)

// Action is the kind of decision a guard returns.
type Action int

// Guard actions.
const (
	// ActionAllow renders the guarded content unchanged.
	ActionAllow Action = iota
	// ActionFallback renders a fallback instead of the content.
	ActionFallback
)

// FallbackKind names the fallback to render.
type FallbackKind int

// Fallback kinds.
const (
	// FallbackNone means no fallback applies.
	FallbackNone FallbackKind = iota
	// FallbackLoading renders a loading placeholder.
	FallbackLoading
	// FallbackSignIn renders the sign-in-required fallback.
	FallbackSignIn
	// FallbackVerifyEmail renders the verify-email fallback.
	FallbackVerifyEmail
	// FallbackProfileSetup renders the complete-your-profile fallback.
	FallbackProfileSetup
	// FallbackPermission renders the insufficient-permission fallback.
	FallbackPermission
)

// String returns the fallback name for logging and API payloads.
func (k FallbackKind) String() string {
	switch k {
	case FallbackLoading:
		return "loading"
	case FallbackSignIn:
		return "sign-in-required"
	case FallbackVerifyEmail:
		return "verify-email"
	case FallbackProfileSetup:
		return "profile-setup"
	case FallbackPermission:
		return "insufficient-permission"
	default:
		return "none"
	}
}

// Decision is the pure outcome of one guard evaluation. Redirect, when set,
// must be executed deferred, never in the same tick as rendering the
// fallback.
type Decision struct {
	Action   Action
	Fallback FallbackKind
	Redirect *routes.Route
}

// Requirement describes what a guarded screen needs.
type Requirement struct {
	// RequireAuth demands a signed-in identity.
	RequireAuth bool
	// RequireVerifiedEmail demands a verified email.
	RequireVerifiedEmail bool
	// RequireCompleteProfile demands a complete profile. Privileged roles
	// are always exempt.
	RequireCompleteProfile bool
	// Permission names a single required capability.
	Permission string
	// AnyPermission is satisfied by holding at least one listed capability.
	AnyPermission []string
	// OnUnauthenticated, when set, is returned as a deferred redirect
	// instead of the sign-in fallback's default of no navigation.
	OnUnauthenticated *routes.Route
}

// Evaluate runs the ordered checklist; the first failing check wins.
func Evaluate(req Requirement, role adminrole.Snapshot) Decision {
	sess := role.Session

	if sess.Loading || role.Loading {
		return Decision{Action: ActionFallback, Fallback: FallbackLoading}
	}

	if req.RequireAuth && sess.Identity == nil {
		decision := Decision{Action: ActionFallback, Fallback: FallbackSignIn}
		if req.OnUnauthenticated != nil {
			target := *req.OnUnauthenticated
			decision.Redirect = &target
		}
		return decision
	}

	if req.RequireVerifiedEmail && (sess.Identity == nil || !sess.Identity.EmailVerified) {
		target := routes.VerifyEmail
		return Decision{Action: ActionFallback, Fallback: FallbackVerifyEmail, Redirect: &target}
	}

	if req.RequireCompleteProfile && !role.Privileged {
		storedComplete := sess.Profile != nil && sess.Profile.IsProfileComplete
		fieldsComplete := sess.Profile != nil && profiles.Complete(*sess.Profile)
		// The stored flag is trusted over the field recheck: the backend
		// already declared this profile complete.
		if !storedComplete && !fieldsComplete {
			target := routes.ProfileSetup
			return Decision{Action: ActionFallback, Fallback: FallbackProfileSetup, Redirect: &target}
		}
	}

	if req.Permission != "" && !heldPermissions(role).Has(req.Permission) {
		// Authorization gap, not authentication: render only, never
		// navigate away.
		return Decision{Action: ActionFallback, Fallback: FallbackPermission}
	}

	if len(req.AnyPermission) > 0 && !heldPermissions(role).HasAny(req.AnyPermission) {
		return Decision{Action: ActionFallback, Fallback: FallbackPermission}
	}

	return Decision{Action: ActionAllow}
}

// heldPermissions returns the capability set for permission checks. A
// privileged identity whose detail fetch has not settled yet holds every
// capability, matching the fail-open fallback synthesis.
func heldPermissions(role adminrole.Snapshot) permissions.Set {
	if role.Admin != nil {
		return role.Admin.Permissions
	}
	if role.Privileged {
		return permissions.All()
	}
	return permissions.Set{}
}
