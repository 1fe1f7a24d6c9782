package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseDriver      string // "postgres" or "sqlite"
	DatabaseURL         string
	HTTPAddr            string
	LogLevel            string
	Environment         string
	TimeZone            string
	Location            *time.Location
	CronSpecDueScan     string
	UpcomingDefaultDays int
	TelegramToken       string // Optional; the bot is disabled when empty
	AdminTelegramID     int64
	NotifyChatID        int64
}

// TelegramEnabled reports whether a bot token was configured.
func (c *AppConfig) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseDriver = strings.ToLower(os.Getenv("DATABASE_DRIVER"))
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = "postgres"
	}
	if cfg.DatabaseDriver != "postgres" && cfg.DatabaseDriver != "sqlite" {
		return nil, fmt.Errorf("invalid DATABASE_DRIVER %q: want postgres or sqlite", cfg.DatabaseDriver)
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.TimeZone = os.Getenv("APP_TIMEZONE")
	if cfg.TimeZone == "" {
		cfg.TimeZone = "Local"
	}
	cfg.Location, err = time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	cfg.CronSpecDueScan = os.Getenv("CRON_SPEC_DUE_SCAN")
	if cfg.CronSpecDueScan == "" {
		cfg.CronSpecDueScan = "0 9 * * *" // Default: 9 AM daily
	}

	cfg.UpcomingDefaultDays = 7
	if v := os.Getenv("UPCOMING_DEFAULT_DAYS"); v != "" {
		cfg.UpcomingDefaultDays, err = strconv.Atoi(v)
		if err != nil || cfg.UpcomingDefaultDays < 0 {
			return nil, fmt.Errorf("invalid UPCOMING_DEFAULT_DAYS: %q", v)
		}
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramEnabled() {
		if cfg.AdminTelegramID, err = requireInt64("ADMIN_TELEGRAM_ID"); err != nil {
			return nil, err
		}
		if cfg.NotifyChatID, err = requireInt64("NOTIFY_CHAT_ID"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func requireInt64(key string) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, fmt.Errorf("%s is not set", key)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
