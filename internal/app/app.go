// Package app wires configuration into the shared pieces every binary
// needs: logging, the admin API client, the optional audit database and the
// alert channel.
package app

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"admin-console/internal/config"
	"admin-console/internal/database"
	"admin-console/internal/notify"
	"admin-console/internal/pages"
	"admin-console/internal/services"
	"admin-console/pkg/common"
)

// SetupLogging installs the global zerolog logger.
func SetupLogging(cfg *config.Config) {
	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.LogJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
}

// NewClient builds the admin API client. tokens is the fallback store used
// when a request context carries none.
func NewClient(cfg *config.Config, tokens common.TokenStore, onUnauthorized func(context.Context)) *common.Client {
	return common.NewClient(common.ClientConfig{
		BaseURL:        cfg.APIBaseURL,
		Timeout:        cfg.APITimeout,
		LoginPath:      cfg.LoginPath,
		Tokens:         tokens,
		OnUnauthorized: onUnauthorized,
	})
}

// OpenDB connects and migrates the audit database, or returns nil when it
// is not configured or unreachable.
func OpenDB(cfg *config.Config) *gorm.DB {
	if !cfg.DatabaseEnabled() {
		log.Info().Msg("audit database not configured, audit log disabled")
		return nil
	}
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		log.Error().Err(err).Msg("audit database unavailable, audit log disabled")
		return nil
	}
	if err := database.Migrate(db); err != nil {
		log.Error().Err(err).Msg("audit database migration failed, audit log disabled")
		return nil
	}
	return db
}

// Alerts returns the Telegram notifier when configured, else nil.
func Alerts(cfg *config.Config) notify.Notifier {
	if !cfg.TelegramEnabled() {
		return nil
	}
	tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		log.Error().Err(err).Msg("telegram alerts disabled")
		return nil
	}
	return tg
}

// Deps builds the page dependencies over one client.
func Deps(cfg *config.Config, client *common.Client, db *gorm.DB, alerts notify.Notifier) pages.Deps {
	return pages.Deps{
		Dashboard:      services.NewDashboardService(client),
		Users:          services.NewUserService(client),
		Network:        services.NewNetworkService(client),
		History:        services.NewHistoryService(client),
		Funds:          services.NewFundService(client),
		Settings:       services.NewSettingsService(client),
		Deposits:       services.NewDepositService(client),
		Trades:         services.NewTradeService(client),
		Audit:          services.NewAuditService(db),
		Alerts:         alerts,
		PageSize:       cfg.PageSize,
		ExportPageSize: cfg.ExportPageSize,
	}
}
