package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"admin-console/pkg/common"
)

type Config struct {
	// Admin API
	APIBaseURL string
	APITimeout time.Duration
	LoginPath  string

	// Console server
	Port         string
	GinMode      string
	CookieSecure bool
	SessionTTL   time.Duration
	MaxSessions  int
	LogLevel     zerolog.Level
	LogJSON      bool

	// CLI
	SessionFile string

	// Pages
	PageSize       int
	ExportPageSize int

	// Background exports
	RedisURL     string
	ExportDir    string
	ExportCron   string
	ExportKinds  []string
	ServiceToken string

	// Audit log (optional)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Telegram forwarding (optional)
	TelegramBotToken string
	TelegramChatID   int64

	GRPCHealthPort string
}

// Load reads .env (or ../.env) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load("../.env")
	}

	cfg := &Config{
		APIBaseURL: envOr("ADMIN_API_URL", "http://localhost:4000/api"),
		APITimeout: envDuration("ADMIN_API_TIMEOUT", common.DefaultTimeout),
		LoginPath:  envOr("ADMIN_LOGIN_PATH", "/admin/login"),

		Port:         envOr("PORT", "8080"),
		GinMode:      os.Getenv("GIN_MODE"),
		CookieSecure: envOr("COOKIE_SECURE", "false") == "true",
		SessionTTL:   envDuration("SESSION_TTL", 12*time.Hour),
		MaxSessions:  envInt("MAX_SESSIONS", 1000),
		LogJSON:      envOr("LOG_FORMAT", "console") == "json",

		SessionFile: envOr("SESSION_FILE", defaultSessionFile()),

		PageSize:       envInt("PAGE_SIZE", 20),
		ExportPageSize: envInt("EXPORT_PAGE_SIZE", 1000),

		RedisURL:     os.Getenv("REDIS_URL"),
		ExportDir:    envOr("EXPORT_DIR", "exports"),
		ExportCron:   os.Getenv("EXPORT_CRON"),
		ExportKinds:  common.SplitTrim(envOr("EXPORT_KINDS", "deposits,withdrawals,income")),
		ServiceToken: os.Getenv("SERVICE_TOKEN"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     envOr("DB_PORT", "3306"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		GRPCHealthPort: envOr("GRPC_HEALTH_PORT", "50051"),
	}

	level, err := zerolog.ParseLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("ADMIN_API_URL must be an http(s) URL, got %q", c.APIBaseURL)
	}
	if c.PageSize <= 0 || c.ExportPageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE and EXPORT_PAGE_SIZE must be positive")
	}
	return nil
}

// DatabaseEnabled reports whether the audit log database is configured.
func (c *Config) DatabaseEnabled() bool {
	return c.DBHost != "" && c.DBName != ""
}

func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) QueueEnabled() bool { return c.RedisURL != "" }

func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".admin-console/session.json"
	}
	return home + "/.admin-console/session.json"
}

// helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// envDuration accepts Go durations ("90s") or plain seconds ("90").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if s, err := strconv.Atoi(v); err == nil {
		return time.Duration(s) * time.Second
	}
	return fallback
}
