package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lanternfest/portal/internal/audit"
	"github.com/lanternfest/portal/internal/config"
	"github.com/lanternfest/portal/internal/coordinator"
	"github.com/lanternfest/portal/internal/identity"
	"github.com/lanternfest/portal/internal/models"
	"github.com/lanternfest/portal/internal/security"
	"github.com/lanternfest/portal/internal/settings"
	"github.com/lanternfest/portal/internal/util"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthHandler handles account registration and session lifecycle endpoints.
type AuthHandler struct {
	db       *gorm.DB
	jwtCfg   config.JWTConfig
	hub      *identity.LocalHub
	registry *coordinator.Registry
	recorder *audit.Recorder
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, hub *identity.LocalHub, registry *coordinator.Registry, recorder *audit.Recorder) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg, hub: hub, registry: registry, recorder: recorder}
}

// registerRequest defines the request body for account registration.
type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// Register creates a new account with an empty, incomplete profile.
func (h *AuthHandler) Register(c *gin.Context) {
	if !settings.Bool(settings.RegistrationOpenKey, settings.DefaultRegistrationOpen) {
		c.JSON(http.StatusForbidden, gin.H{"error": "registration closed"})
		return
	}

	var body registerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email"})
		return
	}
	password := strings.TrimSpace(body.Password)
	if password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing password"})
		return
	}

	var exists models.Account
	if errCheck := h.db.WithContext(c.Request.Context()).Where("email = ?", email).First(&exists).Error; errCheck == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	now := time.Now().UTC()
	account := models.Account{
		Email:       email,
		Password:    hash,
		DisplayName: strings.TrimSpace(body.DisplayName),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&account).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create account failed"})
		return
	}

	// A fresh profile starts incomplete; the post-sign-in flow routes the
	// account through profile setup.
	profile := models.Profile{
		AccountID: account.ID,
		FullName:  account.DisplayName,
		Email:     account.Email,
		Role:      models.RoleUser,
	}
	if errProfile := h.db.WithContext(c.Request.Context()).Create(&profile).Error; errProfile != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create profile failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    account.ID,
		"email": account.Email,
	})
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

// Login authenticates an account, establishes a browsing session, and
// returns a session token. The post-sign-in flow decision runs inside the
// session coordinator, not here.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	account, errSignIn := h.hub.SignIn(c.Request.Context(), body.Email, body.Password, body.TOTPCode)
	if errSignIn != nil {
		switch {
		case errors.Is(errSignIn, identity.ErrTOTPRequired):
			c.JSON(http.StatusForbidden, gin.H{"error": "totp required"})
		case errors.Is(errSignIn, identity.ErrBadTOTP):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid totp code"})
		case errors.Is(errSignIn, identity.ErrAccountDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		case errors.Is(errSignIn, identity.ErrBadCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sign in failed"})
		}
		return
	}

	token, sessionID, errToken := security.GenerateSessionToken(h.jwtCfg.Secret, account.ID, account.Email, account.DisplayName, h.jwtCfg.Expiry())
	if errToken != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate token failed"})
		return
	}

	// Wire the coordinator before the identity lands so the session store
	// observes the sign-in as its first event.
	coord := h.registry.Get(sessionID)
	if _, errEstablish := h.hub.Establish(c.Request.Context(), sessionID, account.ID); errEstablish != nil {
		h.registry.Remove(sessionID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "establish session failed"})
		return
	}
	coord.Touch()

	if h.recorder != nil {
		id := account.ID
		h.recorder.Record(models.AuditSignIn, &id, map[string]any{
			"email": account.Email,
			"scope": sessionID,
		})
	}
	log.Infof("sign-in %s scope=%s", util.MaskEmail(account.Email), sessionID)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"account": gin.H{
			"id":             account.ID,
			"email":          account.Email,
			"display_name":   account.DisplayName,
			"email_verified": account.EmailVerified,
		},
	})
}

// Logout signs the browsing session out and tears down its coordinator.
func (h *AuthHandler) Logout(c *gin.Context) {
	scope := getScope(c)
	if scope == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	accountID := getAccountID(c)
	if coord := getCoordinator(c); coord != nil {
		coord.Provider.SignOut()
	}
	h.registry.Remove(scope)

	if h.recorder != nil && accountID != 0 {
		id := accountID
		h.recorder.Record(models.AuditSignOut, &id, map[string]any{"scope": scope})
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// VerifyEmail marks the signed-in account's email as verified and pushes
// the refreshed identity to every session bound to the account.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	accountID := getAccountID(c)
	if accountID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	if errMark := h.hub.MarkEmailVerified(c.Request.Context(), accountID); errMark != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verify email failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "verified"})
}
