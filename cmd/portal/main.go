package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/lanternfest/portal/internal/app"
	"github.com/lanternfest/portal/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	migrateOnly := flag.Bool("migrate", false, "run database migrations and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.AppConfig{ConfigPath: *configPath}

	if *migrateOnly {
		if errMigrate := app.Migrate(ctx, cfg); errMigrate != nil {
			log.Fatalf("migrate: %v", errMigrate)
		}
		return
	}

	if errRun := app.RunServer(ctx, cfg); errRun != nil {
		log.Fatalf("server: %v", errRun)
	}
}
