package main

import (
	"context"

	"edutoken-backend/internal/config"
	"edutoken-backend/internal/interfaces/router"
	"edutoken-backend/internal/pkg/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	logger.Setup(cfg.Env, cfg.LogLevel)

	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("database handle")
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	log.Info().Str("dialect", db.Dialector.Name()).Msg("Database connected")

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	log.Info().Msg("Redis connected")

	log.Info().
		Str("port", cfg.Port).
		Str("env", cfg.Env).
		Int64("platform_fee_bp", cfg.PlatformFeeBP).
		Msgf("Server running at http://localhost:%s (health: /health/json)", cfg.Port)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}
