package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/smkpro/smkpro-backend/pkg/config"
	"github.com/smkpro/smkpro-backend/pkg/db"
	"github.com/smkpro/smkpro-backend/pkg/logger"
	"github.com/smkpro/smkpro-backend/pkg/migrate"
)

func main() {
	ctx := context.Background()
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version")
	version := flag.String("version", "", "target version for -cmd=version")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	logg.Info(ctx, "running migrations")

	if *cmd == "version" {
		if err := migrate.MigrateToVersion(ctx, sqlDB, *version); err != nil {
			logg.Error(ctx, "migration failed", err)
			os.Exit(1)
		}
	} else {
		if err := migrate.Run(ctx, sqlDB, *cmd); err != nil {
			logg.Error(ctx, "migration failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "migrations complete")
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err != nil {
		logg.Error(ctx, "failed to bootstrap "+name, err)
		os.Exit(1)
	}
}
