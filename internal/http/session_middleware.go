package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lanternfest/portal/internal/adminrole"
	"github.com/lanternfest/portal/internal/audit"
	"github.com/lanternfest/portal/internal/config"
	"github.com/lanternfest/portal/internal/coordinator"
	"github.com/lanternfest/portal/internal/guard"
	"github.com/lanternfest/portal/internal/models"
	"github.com/lanternfest/portal/internal/security"
)

// Context keys set by the session middleware.
const (
	// ContextAccountID holds the authenticated account ID.
	ContextAccountID = "accountID"
	// ContextScope holds the browsing-session scope.
	ContextScope = "sessionScope"
	// ContextCoordinator holds the *coordinator.Coordinator.
	ContextCoordinator = "coordinator"
)

// SessionMiddleware resolves the browsing-session coordinator from the
// bearer token. It never aborts: guards downstream decide what an absent
// or invalid session means for each route.
func SessionMiddleware(registry *coordinator.Registry, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		claims, errParse := security.ParseSessionToken(jwtCfg.Secret, token)
		if errParse != nil {
			c.Next()
			return
		}

		coord := registry.Get(claims.ID)
		c.Set(ContextAccountID, claims.AccountID)
		c.Set(ContextScope, claims.ID)
		c.Set(ContextCoordinator, coord)
		c.Next()
	}
}

// Guard enforces a requirement for a route. The decision is computed
// purely from the coordinator's published snapshots; any redirect is
// returned to the caller for deferred execution, never performed here.
func Guard(req guard.Requirement, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		coord := CoordinatorFromContext(c)

		var role adminrole.Snapshot
		if coord != nil {
			role = coord.Roles.Snapshot()
		}
		decision := guard.Evaluate(req, role)

		if decision.Action == guard.ActionAllow {
			c.Next()
			return
		}

		if decision.Fallback == guard.FallbackPermission && recorder != nil {
			if accountID, ok := AccountIDFromContext(c); ok {
				id := accountID
				recorder.Record(models.AuditDenial, &id, map[string]any{
					"path":       c.FullPath(),
					"permission": req.Permission,
				})
			}
		}

		writeDecision(c, decision)
	}
}

// writeDecision maps a guard fallback onto an HTTP response.
func writeDecision(c *gin.Context, decision guard.Decision) {
	body := gin.H{"fallback": decision.Fallback.String()}
	if decision.Redirect != nil {
		// Deferred navigation contract: the shell executes this after the
		// current render pass, never the server.
		body["redirect"] = decision.Redirect.String()
	}

	status := http.StatusForbidden
	switch decision.Fallback {
	case guard.FallbackLoading:
		status = http.StatusServiceUnavailable
	case guard.FallbackSignIn:
		status = http.StatusUnauthorized
	}
	c.AbortWithStatusJSON(status, body)
}

// bearerToken extracts the bearer token from the Authorization header.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}
	return strings.TrimSpace(token)
}

// CoordinatorFromContext returns the resolved coordinator, or nil.
func CoordinatorFromContext(c *gin.Context) *coordinator.Coordinator {
	value, ok := c.Get(ContextCoordinator)
	if !ok {
		return nil
	}
	coord, ok := value.(*coordinator.Coordinator)
	if !ok {
		return nil
	}
	return coord
}

// AccountIDFromContext returns the authenticated account ID.
func AccountIDFromContext(c *gin.Context) (uint64, bool) {
	value, ok := c.Get(ContextAccountID)
	if !ok {
		return 0, false
	}
	accountID, ok := value.(uint64)
	return accountID, ok
}

// ScopeFromContext returns the browsing-session scope.
func ScopeFromContext(c *gin.Context) (string, bool) {
	value, ok := c.Get(ContextScope)
	if !ok {
		return "", false
	}
	scope, ok := value.(string)
	return scope, ok
}
