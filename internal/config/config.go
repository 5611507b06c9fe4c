package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config collects the environment the server needs at startup. Values
// come from the process environment; cmd/taskhive loads a .env file
// first in development.
type Config struct {
	Port          string
	DatabaseDSN   string
	JWTSecret     string
	SweepInterval time.Duration
}

func Load() (Config, error) {
	cfg := Config{
		Port:          getenv("PORT", "3000"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SweepInterval: 5 * time.Minute,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.DatabaseDSN = dsn
	} else {
		cfg.DatabaseDSN = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getenv("DB_HOST", "localhost"),
			getenv("DB_PORT", "5432"),
			getenv("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			getenv("DB_NAME", "taskhive"),
			getenv("DB_SSLMODE", "disable"),
		)
	}

	if raw := os.Getenv("SWEEP_INTERVAL_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid SWEEP_INTERVAL_SECONDS: %q", raw)
		}
		cfg.SweepInterval = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
