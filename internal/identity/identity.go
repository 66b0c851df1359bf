// Package identity wraps the identity provider. The portal never verifies
// credentials beyond what the provider reports; downstream layers only
// reflect the trust decisions made here.
package identity

// Identity is the read-only authentication handle pushed to subscribers.
type Identity struct {
	ID            uint64 // Provider-unique account ID.
	Email         string // Sign-in email.
	EmailVerified bool   // Live verified flag.
	DisplayName   string // Optional display name.
	PhotoURL      string // Optional avatar URL.
}

// Provider delivers identity-change events for one browsing session.
// Subscribe pushes the current identity (possibly nil) immediately, then
// again on every change until the unsubscribe function is called.
type Provider interface {
	// Subscribe registers a change callback and returns an unsubscribe.
	Subscribe(fn func(*Identity)) func()
	// Current returns the identity as the provider sees it right now.
	Current() *Identity
	// SignOut ends the session and pushes a nil identity to subscribers.
	SignOut()
}
