package identity

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/lanternfest/portal/internal/models"
	"github.com/lanternfest/portal/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Sign-in errors.
var (
	// ErrBadCredentials indicates an unknown email or wrong password.
	ErrBadCredentials = errors.New("identity: bad credentials")
	// ErrAccountDisabled indicates the account cannot sign in.
	ErrAccountDisabled = errors.New("identity: account disabled")
	// ErrTOTPRequired indicates a second factor must be presented.
	ErrTOTPRequired = errors.New("identity: totp required")
	// ErrBadTOTP indicates the presented TOTP code is wrong.
	ErrBadTOTP = errors.New("identity: bad totp code")
)

// LocalHub is the database-backed identity provider. It tracks authenticated
// browsing sessions and pushes identity changes to per-session subscribers.
type LocalHub struct {
	db *gorm.DB

	mu       sync.Mutex
	sessions map[string]*sessionHandle
}

// NewLocalHub constructs a LocalHub.
func NewLocalHub(db *gorm.DB) *LocalHub {
	return &LocalHub{db: db, sessions: make(map[string]*sessionHandle)}
}

// SignIn checks credentials and returns the account on success. When the
// account has TOTP enrolled and no code is given, ErrTOTPRequired is
// returned so the caller can run the second factor step.
func (h *LocalHub) SignIn(ctx context.Context, email, password, totpCode string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrBadCredentials
	}

	var account models.Account
	if errFind := h.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, errFind
	}
	if !security.CheckPassword(account.Password, password) {
		return nil, ErrBadCredentials
	}
	if !account.Active {
		return nil, ErrAccountDisabled
	}
	if account.TOTPSecret != "" {
		if strings.TrimSpace(totpCode) == "" {
			return nil, ErrTOTPRequired
		}
		if !security.ValidateTOTP(totpCode, account.TOTPSecret) {
			return nil, ErrBadTOTP
		}
	}
	return &account, nil
}

// Establish binds an authenticated account to a browsing session scope and
// pushes its identity to any existing subscribers of that scope.
func (h *LocalHub) Establish(ctx context.Context, sessionID string, accountID uint64) (Provider, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errors.New("identity: empty session id")
	}

	var account models.Account
	if errFind := h.db.WithContext(ctx).First(&account, accountID).Error; errFind != nil {
		return nil, errFind
	}

	h.mu.Lock()
	handle, ok := h.sessions[sessionID]
	if !ok {
		handle = newSessionHandle(h, sessionID)
		h.sessions[sessionID] = handle
	}
	h.mu.Unlock()

	handle.push(identityFromAccount(&account))
	return handle, nil
}

// Session returns the provider handle for a browsing session, creating an
// unauthenticated one when the scope is new.
func (h *LocalHub) Session(sessionID string) Provider {
	sessionID = strings.TrimSpace(sessionID)
	h.mu.Lock()
	defer h.mu.Unlock()
	handle, ok := h.sessions[sessionID]
	if !ok {
		handle = newSessionHandle(h, sessionID)
		h.sessions[sessionID] = handle
	}
	return handle
}

// MarkEmailVerified flips the verified flag and re-pushes the identity to
// every session bound to the account.
func (h *LocalHub) MarkEmailVerified(ctx context.Context, accountID uint64) error {
	if errUpdate := h.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("email_verified", true).Error; errUpdate != nil {
		return errUpdate
	}
	h.RefreshAccount(ctx, accountID)
	return nil
}

// RefreshAccount re-reads an account and pushes the fresh identity to every
// session currently bound to it. Read failures are logged and swallowed;
// subscribers keep their last identity.
func (h *LocalHub) RefreshAccount(ctx context.Context, accountID uint64) {
	var account models.Account
	if errFind := h.db.WithContext(ctx).First(&account, accountID).Error; errFind != nil {
		log.WithError(errFind).Warnf("identity: refresh account %d", accountID)
		return
	}

	h.mu.Lock()
	handles := make([]*sessionHandle, 0, len(h.sessions))
	for _, handle := range h.sessions {
		if current := handle.Current(); current != nil && current.ID == accountID {
			handles = append(handles, handle)
		}
	}
	h.mu.Unlock()

	fresh := identityFromAccount(&account)
	for _, handle := range handles {
		copied := *fresh
		handle.push(&copied)
	}
}

// Drop removes a session scope entirely, without a sign-out push. Used by
// the idle session sweeper.
func (h *LocalHub) Drop(sessionID string) {
	h.mu.Lock()
	delete(h.sessions, sessionID)
	h.mu.Unlock()
}

// identityFromAccount converts an account row to the push payload.
func identityFromAccount(account *models.Account) *Identity {
	return &Identity{
		ID:            account.ID,
		Email:         account.Email,
		EmailVerified: account.EmailVerified,
		DisplayName:   account.DisplayName,
		PhotoURL:      account.PhotoURL,
	}
}

// sessionHandle is the per-browsing-session Provider implementation.
type sessionHandle struct {
	hub       *LocalHub
	sessionID string

	mu        sync.Mutex
	current   *Identity
	nextID    int
	listeners map[int]func(*Identity)
}

// newSessionHandle constructs an unauthenticated session handle.
func newSessionHandle(hub *LocalHub, sessionID string) *sessionHandle {
	return &sessionHandle{hub: hub, sessionID: sessionID, listeners: map[int]func(*Identity){}}
}

// Subscribe registers a change callback, pushes the current identity
// immediately, and returns an unsubscribe.
func (s *sessionHandle) Subscribe(fn func(*Identity)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	current := s.cloneCurrentLocked()
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Current returns the identity as the provider sees it right now.
func (s *sessionHandle) Current() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneCurrentLocked()
}

// SignOut ends the session and pushes a nil identity to subscribers.
func (s *sessionHandle) SignOut() {
	s.push(nil)
}

// push replaces the current identity and notifies subscribers.
func (s *sessionHandle) push(identity *Identity) {
	s.mu.Lock()
	s.current = identity
	fns := make([]func(*Identity), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		if identity == nil {
			fn(nil)
			continue
		}
		copied := *identity
		fn(&copied)
	}
}

// cloneCurrentLocked copies the current identity under the lock.
func (s *sessionHandle) cloneCurrentLocked() *Identity {
	if s.current == nil {
		return nil
	}
	copied := *s.current
	return &copied
}
