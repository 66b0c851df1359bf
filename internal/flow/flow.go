// Package flow drives the post-authentication navigation state machine.
// It combines session, role, and redirect-intent state into a single
// next-step decision and enforces the navigate-once contract.
package flow

import (
	"github.com/lanternfest/portal/internal/profiles"
	"github.com/lanternfest/portal/internal/session"
)

// Stage is the onboarding stage of a session.
type Stage int

// Onboarding stages, in order.
const (
	// StageSignUp means no identity is present.
	StageSignUp Stage = iota
	// StageVerifyEmail means the identity's email is unverified.
	StageVerifyEmail
	// StageProfileSetup means the profile is incomplete.
	StageProfileSetup
	// StageComplete means onboarding is done.
	StageComplete
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageSignUp:
		return "signup"
	case StageVerifyEmail:
		return "verify-email"
	case StageProfileSetup:
		return "profile-setup"
	case StageComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// StageOf evaluates the stage transition function for a session state.
// Privileged roles skip the profile-setup stage entirely.
func StageOf(sess session.Snapshot, privileged bool) Stage {
	if sess.Identity == nil {
		return StageSignUp
	}
	if !sess.Identity.EmailVerified {
		return StageVerifyEmail
	}
	if !privileged {
		if sess.Profile == nil || !profiles.Complete(*sess.Profile) {
			return StageProfileSetup
		}
	}
	return StageComplete
}
