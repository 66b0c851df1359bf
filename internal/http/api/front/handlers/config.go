package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lanternfest/portal/internal/settings"
)

// GetPublicConfig returns portal settings safe for unauthenticated callers.
func GetPublicConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"site_name":         settings.String(settings.SiteNameKey, settings.DefaultSiteName),
		"registration_open": settings.Bool(settings.RegistrationOpenKey, settings.DefaultRegistrationOpen),
	})
}
