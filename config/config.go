// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DBDriver       string // sqlite | postgres
	DBPath         string
	DatabaseURL    string
	RedisAddr      string // empty: in-process locking
	KafkaBrokers   string // empty: events are logged
	KafkaTopic     string
	StripeKey      string // empty: bookings stay pending until confirmed
	Currency       string
	PendingTTL     time.Duration
	SweepInterval  time.Duration
	LogLevel       string
	LogFile        string
	OTelEnabled    bool
	OTLPEndpoint   string
	AllowedOrigins []string
}

// FromEnv reads every key with its default and validates the result. Keys from
// ENV_FILE (default .env) fill in whatever the process environment leaves unset;
// a missing file is fine.
func FromEnv() (Config, error) {
	if err := loadDotEnv(envDefault("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}
	cfg := Config{
		Port:           envDefault("PORT", "8080"),
		DBDriver:       envDefault("DB_DRIVER", "sqlite"),
		DBPath:         envDefault("DB_PATH", "./campground.db"),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisAddr:      strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		KafkaBrokers:   strings.TrimSpace(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     envDefault("KAFKA_TOPIC", "campground.events"),
		StripeKey:      strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),
		Currency:       envDefault("CURRENCY", "usd"),
		LogLevel:       envDefault("LOG_LEVEL", "info"),
		LogFile:        strings.TrimSpace(os.Getenv("LOG_FILE")),
		OTLPEndpoint:   envDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		AllowedOrigins: splitList(envDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")),
	}

	var err error
	if cfg.PendingTTL, err = duration("PENDING_TTL", 30*time.Minute); err != nil {
		return cfg, err
	}
	if cfg.SweepInterval, err = duration("SWEEP_INTERVAL", time.Minute); err != nil {
		return cfg, err
	}
	if cfg.OTelEnabled, err = boolean("OTEL_ENABLED", false); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks settings after flags have been applied.
func (c Config) Validate() error {
	p, err := strconv.Atoi(c.Port)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("PORT must be a valid TCP port (got %q)", c.Port)
	}
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres (got %q)", c.DBDriver)
	}
	if c.PendingTTL <= 0 {
		return fmt.Errorf("PENDING_TTL must be positive")
	}
	return nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("ENV_FILE %s: %w", path, err)
}

func envDefault(k, d string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	return v
}

func duration(k string, d time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 30m (got %q)", k, v)
	}
	return parsed, nil
}

func boolean(k string, d bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false (got %q)", k, v)
	}
	return b, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
