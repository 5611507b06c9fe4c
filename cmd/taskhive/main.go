package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/config"
	"github.com/taskhive-dev/taskhive/internal/handlers"
	"github.com/taskhive-dev/taskhive/internal/router"
	"github.com/taskhive-dev/taskhive/internal/scheduler"
	"github.com/taskhive-dev/taskhive/internal/store"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("no .env file found, relying on process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := auth.InitJWTSecret(); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize auth")
	}

	if err := db.ConnectDatabase(cfg.DatabaseDSN); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.MigrateDatabase(); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	handlers.Init(store.New(db.DB, logger), logger)

	sweeper := scheduler.NewSweeper(cfg.SweepInterval, logger)
	sweeper.Start()
	defer sweeper.Stop()

	r := router.NewRouter(logger)

	logger.Info().Str("port", cfg.Port).Msg("starting server")

	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
