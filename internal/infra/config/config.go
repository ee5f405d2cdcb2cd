package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted in DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken string
	LogLevel      string
	Environment   string

	DatabaseDriver string
	DatabaseURL    string

	RedisAddr     string // empty keeps scenario contexts in process memory
	RedisPassword string
	RedisDB       int
	ScenarioTTL   time.Duration

	CronSpecMealReminder string
	JobFailureCooldown   time.Duration
	ShutdownTimeout      time.Duration

	GoogleFitClientID     string
	GoogleFitClientSecret string
	GoogleFitRedirectURL  string
}

// GoogleFitEnabled reports whether Google Fit credentials are configured.
func (c *AppConfig) GoogleFitEnabled() bool {
	return c.GoogleFitClientID != "" && c.GoogleFitClientSecret != ""
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseDriver = strings.ToLower(getEnv("DATABASE_DRIVER", DriverPostgres))
	switch cfg.DatabaseDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return nil, fmt.Errorf("invalid DATABASE_DRIVER %q: want postgres, sqlite or memory", cfg.DatabaseDriver)
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" && cfg.DatabaseDriver != DriverMemory {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		cfg.RedisDB, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
	}
	if cfg.ScenarioTTL, err = getDuration("SCENARIO_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))

	cfg.CronSpecMealReminder = getEnv("CRON_SPEC_MEAL_REMINDER", "*/1 * * * *")
	if cfg.JobFailureCooldown, err = getDuration("JOB_FAILURE_COOLDOWN", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	cfg.GoogleFitClientID = os.Getenv("GOOGLE_FIT_CLIENT_ID")
	cfg.GoogleFitClientSecret = os.Getenv("GOOGLE_FIT_CLIENT_SECRET")
	cfg.GoogleFitRedirectURL = getEnv("GOOGLE_FIT_REDIRECT_URL", "urn:ietf:wg:oauth:2.0:oob")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
