package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"admin-console/internal/app"
	"admin-console/internal/cli"
	"admin-console/internal/config"
	"admin-console/internal/pages"
	"admin-console/internal/services"
	"admin-console/pkg/common"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	app.SetupLogging(cfg)
	// page warnings are already shown as notices
	if cfg.LogLevel < zerolog.ErrorLevel && os.Getenv("LOG_LEVEL") == "" {
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := app.NewClient(cfg, common.NewFileTokenStore(cfg.SessionFile), nil)
	db := app.OpenDB(cfg)
	deps := app.Deps(cfg, client, db, app.Alerts(cfg))

	env := &cli.Env{
		Auth:      services.NewAuthService(client),
		Workspace: pages.NewWorkspace(deps),
		Out:       os.Stdout,
		Err:       os.Stderr,
		Password:  os.Getenv("ADMIN_PASSWORD"),
	}
	os.Exit(cli.Run(ctx, env, os.Args[1:]))
}
