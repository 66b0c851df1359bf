package admin

import (
	"github.com/gin-gonic/gin"
	"github.com/lanternfest/portal/internal/audit"
	"github.com/lanternfest/portal/internal/config"
	"github.com/lanternfest/portal/internal/coordinator"
	"github.com/lanternfest/portal/internal/guard"
	portalhttp "github.com/lanternfest/portal/internal/http"
	"github.com/lanternfest/portal/internal/http/api/admin/handlers"
	"github.com/lanternfest/portal/internal/permissions"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers the festival administration routes. Every
// route carries its own capability requirement; the guard decides from the
// coordinator's published role snapshot, so a privileged identity whose
// detail fetch has not settled still passes.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, registry *coordinator.Registry, recorder *audit.Recorder) {
	if r == nil || db == nil {
		return
	}

	group := r.Group("/v0/admin")
	group.Use(portalhttp.SessionMiddleware(registry, jwtCfg))

	require := func(permission string) gin.HandlerFunc {
		return portalhttp.Guard(guard.Requirement{
			RequireAuth:          true,
			RequireVerifiedEmail: true,
			Permission:           permission,
		}, recorder)
	}

	dashboardHandler := handlers.NewDashboardHandler(db)
	group.GET("/dashboard/kpi", require(permissions.KeyViewDashboard), dashboardHandler.KPI)

	applicationHandler := handlers.NewApplicationAdminHandler(db, recorder)
	group.GET("/applications", require(permissions.KeyViewApplications), applicationHandler.List)
	group.GET("/applications/:id", require(permissions.KeyViewApplications), applicationHandler.Get)
	group.POST("/applications/:id/score", require(permissions.KeyScoreApplications), applicationHandler.Score)
	group.POST("/applications/:id/approve", require(permissions.KeyApproveApplications), applicationHandler.Approve)
	group.POST("/applications/:id/reject", require(permissions.KeyApproveApplications), applicationHandler.Reject)
	group.POST("/applications/:id/flag", require(permissions.KeyFlagApplications), applicationHandler.Flag)
	group.PUT("/applications/:id", require(permissions.KeyEditApplications), applicationHandler.Update)
	group.DELETE("/applications/:id", require(permissions.KeyDeleteApplications), applicationHandler.Delete)

	userHandler := handlers.NewUserAdminHandler(db)
	group.GET("/users", require(permissions.KeyManageUsers), userHandler.List)
	group.PUT("/users/:id/role", require(permissions.KeyManageUsers), userHandler.SetRole)
	group.PUT("/users/:id/active", require(permissions.KeyManageUsers), userHandler.SetActive)

	settingsHandler := handlers.NewSettingsHandler(db)
	group.GET("/settings", require(permissions.KeySystemSettings), settingsHandler.Get)
	group.PUT("/settings", require(permissions.KeySystemSettings), settingsHandler.Put)

	exportHandler := handlers.NewExportHandler(db)
	group.GET("/export/applications", portalhttp.Guard(guard.Requirement{
		RequireAuth:          true,
		RequireVerifiedEmail: true,
		AnyPermission:        []string{permissions.KeyExportData, permissions.KeyGenerateReports},
	}, recorder), exportHandler.Applications)

	auditHandler := handlers.NewAuditHandler(db)
	group.GET("/audit", require(permissions.KeySystemSettings), auditHandler.List)
}
