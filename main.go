package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"admin-console/internal/app"
	"admin-console/internal/config"
	"admin-console/internal/console"
	"admin-console/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	app.SetupLogging(cfg)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Tokens come from the request cookies; the client has no default.
	client := app.NewClient(cfg, nil, func(ctx context.Context) {
		log.Warn().Msg("operator session ended by the admin API")
	})

	db := app.OpenDB(cfg)
	alerts := app.Alerts(cfg)

	opts := console.Options{
		Config: cfg,
		Client: client,
		Deps:   app.Deps(cfg, client, db, alerts),
		Runs:   services.NewExportRunService(db),
	}

	if cfg.QueueEnabled() {
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisURL})
		defer asynqClient.Close()
		opts.Queue = asynqClient
	} else {
		log.Info().Msg("REDIS_URL not set, background exports disabled")
	}

	r := console.NewServer(opts).Router()

	log.Info().Str("port", cfg.Port).Str("api", cfg.APIBaseURL).Msg("Admin console starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
