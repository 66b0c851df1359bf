package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lanternfest/portal/internal/adminrole"
	"github.com/lanternfest/portal/internal/intent"
	"github.com/lanternfest/portal/internal/routes"
	"github.com/lanternfest/portal/internal/session"
)

// SessionHandler exposes the coordinator's published state to the shell.
type SessionHandler struct {
	intents intent.Store
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(intents intent.Store) *SessionHandler {
	return &SessionHandler{intents: intents}
}

// State returns the session, role, and flow snapshots for this scope.
func (h *SessionHandler) State(c *gin.Context) {
	coord := getCoordinator(c)
	if coord == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	role := coord.Roles.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"session": sessionJSON(role.Session),
		"role":    roleJSON(role),
		"stage":   coord.Flow.Stage().String(),
		"route":   coord.Router.Current().String(),
	})
}

// Refresh re-fetches the profile for the current identity and returns the
// settled state.
func (h *SessionHandler) Refresh(c *gin.Context) {
	coord := getCoordinator(c)
	if coord == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	coord.Sessions.Refresh()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Flow returns the flow stage and the route the shell should be on.
func (h *SessionHandler) Flow(c *gin.Context) {
	coord := getCoordinator(c)
	if coord == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stage": coord.Flow.Stage().String(),
		"route": coord.Router.Current().String(),
	})
}

// setIntentRequest defines the request body for storing a redirect intent.
type setIntentRequest struct {
	Route string `json:"route"`
}

// SetIntent stores the route a signed-out visitor was trying to reach so
// the next completed sign-in can land there.
func (h *SessionHandler) SetIntent(c *gin.Context) {
	var body setIntentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	route, ok := routes.Parse(strings.TrimSpace(body.Route))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown route"})
		return
	}

	scope := getScope(c)
	if scope == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	if errSet := h.intents.Set(c.Request.Context(), scope, route); errSet != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store intent failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// sessionJSON serializes a session snapshot for the shell.
func sessionJSON(sess session.Snapshot) gin.H {
	out := gin.H{"loading": sess.Loading}
	if sess.Identity != nil {
		out["identity"] = gin.H{
			"id":             sess.Identity.ID,
			"email":          sess.Identity.Email,
			"email_verified": sess.Identity.EmailVerified,
			"display_name":   sess.Identity.DisplayName,
			"photo_url":      sess.Identity.PhotoURL,
		}
	}
	if sess.Profile != nil {
		out["profile"] = gin.H{
			"full_name":           sess.Profile.FullName,
			"secondary_name":      sess.Profile.SecondaryName,
			"email":               sess.Profile.Email,
			"phone":               sess.Profile.Phone,
			"nationality":         sess.Profile.Nationality,
			"photo_url":           sess.Profile.PhotoURL,
			"birth_date":          sess.Profile.BirthDate,
			"role":                sess.Profile.Role,
			"email_verified":      sess.Profile.EmailVerified,
			"is_profile_complete": sess.Profile.IsProfileComplete,
		}
	}
	return out
}

// roleJSON serializes a role snapshot for the shell.
func roleJSON(role adminrole.Snapshot) gin.H {
	out := gin.H{
		"privileged": role.Privileged,
		"loading":    role.Loading,
	}
	if role.Admin != nil {
		out["admin"] = gin.H{
			"role":           role.Admin.Role,
			"level":          role.Admin.Level,
			"department":     role.Admin.Department,
			"responsibility": role.Admin.Responsibility,
			"permissions":    role.Admin.GrantedKeys,
			"fallback":       role.Admin.Fallback,
		}
	}
	return out
}
