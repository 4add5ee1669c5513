package main

import (
	"context"
	"fmt"

	"buildsite/internal/config"
	"buildsite/internal/db"
	httpserver "buildsite/internal/http"
	"buildsite/internal/logger"
	"buildsite/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.LogLevel)

	gdb, err := db.Connect(cfg.DBDriver, cfg.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("database unavailable")
	}
	if err := db.AutoMigrate(gdb); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	if err := seed.FirstSetup(context.Background(), gdb, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		logger.Fatal().Err(err).Msg("seed failed")
	}

	r := httpserver.NewRouter(gdb, cfg)
	logger.Info().Str("port", cfg.AppPort).Msg("server listening")
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
