package front

import (
	"github.com/gin-gonic/gin"
	"github.com/lanternfest/portal/internal/audit"
	"github.com/lanternfest/portal/internal/config"
	"github.com/lanternfest/portal/internal/coordinator"
	"github.com/lanternfest/portal/internal/guard"
	portalhttp "github.com/lanternfest/portal/internal/http"
	"github.com/lanternfest/portal/internal/http/api/front/handlers"
	"github.com/lanternfest/portal/internal/identity"
	"github.com/lanternfest/portal/internal/intent"
	"github.com/lanternfest/portal/internal/routes"
	"gorm.io/gorm"
)

// RegisterFrontRoutes registers public and participant-facing routes.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, hub *identity.LocalHub, registry *coordinator.Registry, intents intent.Store, recorder *audit.Recorder) {
	if r == nil || db == nil {
		return
	}

	front := r.Group("/v0/front")
	front.Use(portalhttp.SessionMiddleware(registry, jwtCfg))

	authHandler := handlers.NewAuthHandler(db, jwtCfg, hub, registry, recorder)
	front.POST("/register", authHandler.Register)
	front.POST("/login", authHandler.Login)
	front.POST("/logout", authHandler.Logout)
	front.GET("/config", handlers.GetPublicConfig)

	authed := front.Group("")
	authed.Use(portalhttp.Guard(guard.Requirement{
		RequireAuth:       true,
		OnUnauthenticated: &routes.SignUp,
	}, recorder))

	authed.POST("/verify-email", authHandler.VerifyEmail)

	sessionHandler := handlers.NewSessionHandler(intents)
	authed.GET("/session", sessionHandler.State)
	authed.POST("/session/refresh", sessionHandler.Refresh)
	authed.GET("/flow", sessionHandler.Flow)
	authed.POST("/intent", sessionHandler.SetIntent)

	profileHandler := handlers.NewProfileHandler(db, hub)
	authed.GET("/profile", profileHandler.Get)
	authed.PUT("/profile", profileHandler.Update)

	applicationHandler := handlers.NewApplicationHandler(db)
	submissions := authed.Group("")
	submissions.Use(portalhttp.Guard(guard.Requirement{
		RequireAuth:            true,
		RequireVerifiedEmail:   true,
		RequireCompleteProfile: true,
		OnUnauthenticated:      &routes.SignUp,
	}, recorder))
	submissions.POST("/applications", applicationHandler.Submit)
	submissions.GET("/applications", applicationHandler.ListOwn)
}
