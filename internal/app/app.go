package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/lanternfest/portal/internal/adminrole"
	"github.com/lanternfest/portal/internal/audit"
	"github.com/lanternfest/portal/internal/config"
	"github.com/lanternfest/portal/internal/coordinator"
	"github.com/lanternfest/portal/internal/db"
	"github.com/lanternfest/portal/internal/http/api/admin"
	"github.com/lanternfest/portal/internal/http/api/front"
	"github.com/lanternfest/portal/internal/identity"
	"github.com/lanternfest/portal/internal/intent"
	"github.com/lanternfest/portal/internal/logging"
	"github.com/lanternfest/portal/internal/profiles"
	"github.com/lanternfest/portal/internal/settings"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, errDSN := config.LoadDatabaseDSN(configPath)
	if errDSN != nil {
		return errDSN
	}
	conn, errOpen := db.Open(dsn)
	if errOpen != nil {
		return errOpen
	}
	return db.Migrate(conn)
}

// RunServer boots the portal API server with database-backed components.
func RunServer(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)

	logCfg, errLog := config.LoadLogConfig(configPath)
	if errLog != nil {
		return errLog
	}
	logging.Setup(logCfg)

	dsn, errDSN := config.LoadDatabaseDSN(configPath)
	if errDSN != nil {
		return errDSN
	}
	conn, errOpen := db.Open(dsn)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errSnapshot := settings.RefreshDBConfigSnapshot(ctx, conn); errSnapshot != nil {
		return errSnapshot
	}

	jwtCfg, errJWT := config.LoadJWTConfig(configPath)
	if errJWT != nil {
		return errJWT
	}
	serverCfg, errServer := config.LoadServerConfig(configPath)
	if errServer != nil {
		return errServer
	}

	intents, errIntents := buildIntentStore(ctx, configPath)
	if errIntents != nil {
		return errIntents
	}

	hub := identity.NewLocalHub(conn)
	profileStore := profiles.NewGormStore(conn)
	detailStore := adminrole.NewGormDetailStore(conn)
	recorder := audit.NewRecorder(conn)
	defer recorder.Close()
	audit.NewRetentionCleaner(conn).Start(ctx)

	registry := coordinator.NewRegistry(ctx, hub, profileStore, detailStore, intents, recorder)
	defer registry.Close()
	go registry.RunSweeper(ctx)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	front.RegisterFrontRoutes(engine, conn, jwtCfg, hub, registry, intents, recorder)
	admin.RegisterAdminRoutes(engine, conn, jwtCfg, registry, recorder)

	server := &http.Server{
		Addr:    serverCfg.Addr,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("portal listening on %s", serverCfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}

// buildIntentStore selects the redirect-intent backend. Redis keeps intents
// across restarts; with no redis configured the in-memory store serves.
func buildIntentStore(ctx context.Context, configPath string) (intent.Store, error) {
	redisCfg, errRedis := config.LoadRedisConfig(configPath)
	if errRedis != nil {
		return nil, errRedis
	}
	if redisCfg.Addr == "" {
		log.Info("redis not configured, using in-memory redirect intents")
		return intent.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if errPing := client.Ping(pingCtx).Err(); errPing != nil {
		return nil, errPing
	}
	return intent.NewRedisStore(client), nil
}
