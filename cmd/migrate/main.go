package main

import (
	"github.com/rs/zerolog/log"

	"admin-console/internal/app"
	"admin-console/internal/config"
	"admin-console/internal/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	app.SetupLogging(cfg)

	if !cfg.DatabaseEnabled() {
		log.Fatal().Msg("DB_HOST and DB_NAME are required to migrate the audit database")
	}
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect")
	}

	log.Info().Msg("Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Msg("Migrations completed successfully!")
}
