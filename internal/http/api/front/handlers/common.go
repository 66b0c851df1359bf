package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/lanternfest/portal/internal/coordinator"
	portalhttp "github.com/lanternfest/portal/internal/http"
)

// getAccountID extracts the authenticated account ID from gin context.
func getAccountID(c *gin.Context) uint64 {
	accountID, ok := portalhttp.AccountIDFromContext(c)
	if !ok {
		return 0
	}
	return accountID
}

// getScope extracts the browsing-session scope from gin context.
func getScope(c *gin.Context) string {
	scope, ok := portalhttp.ScopeFromContext(c)
	if !ok {
		return ""
	}
	return scope
}

// getCoordinator extracts the session coordinator from gin context.
func getCoordinator(c *gin.Context) *coordinator.Coordinator {
	return portalhttp.CoordinatorFromContext(c)
}
