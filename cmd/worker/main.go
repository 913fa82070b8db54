package main

import (
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"admin-console/internal/app"
	"admin-console/internal/config"
	grpcServer "admin-console/internal/grpc"
	"admin-console/internal/notify"
	"admin-console/internal/services"
	"admin-console/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	app.SetupLogging(cfg)

	if !cfg.QueueEnabled() {
		log.Fatal().Msg("REDIS_URL is required for the export worker")
	}
	if cfg.ServiceToken == "" {
		log.Warn().Msg("SERVICE_TOKEN not set, exports will fail with 401")
	}

	// Background jobs always run as the service account; the worker binds
	// a fresh token store per job.
	client := app.NewClient(cfg, nil, nil)
	db := app.OpenDB(cfg)

	w := worker.NewWorker(
		services.NewHistoryService(client),
		services.NewExportRunService(db),
		notify.OrDiscard(app.Alerts(cfg)),
		cfg.ServiceToken,
		cfg.ExportDir,
		cfg.ExportPageSize,
	)

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisURL}

	if cfg.ExportCron != "" {
		kinds := make([]services.HistoryKind, 0, len(cfg.ExportKinds))
		for _, k := range cfg.ExportKinds {
			kind, err := services.ParseHistoryKind(k)
			if err != nil {
				log.Fatal().Err(err).Msg("EXPORT_KINDS")
			}
			kinds = append(kinds, kind)
		}
		asynqClient := asynq.NewClient(redisOpt)
		defer asynqClient.Close()
		c, err := worker.StartScheduler(cfg.ExportCron, kinds, asynqClient)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to start export scheduler")
		}
		defer c.Stop()
	}

	health, err := grpcServer.NewHealthServer(cfg.GRPCHealthPort)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start gRPC health server")
	}
	go func() {
		if err := health.Serve(); err != nil {
			log.Error().Err(err).Msg("gRPC health server stopped")
		}
	}()
	defer health.Stop()
	health.SetServing(true)

	log.Info().Str("redis", cfg.RedisURL).Str("dir", cfg.ExportDir).Msg("Starting export worker...")
	if err := worker.StartWorker(redisOpt, w); err != nil {
		health.SetServing(false)
		log.Fatal().Err(err).Msg("could not run worker server")
	}
}
