package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "dev-secret-change-in-production"

type Config struct {
	Port          string
	Env           string
	DatabaseDSN   string
	JWTSecret     string
	JWTIssuer     string
	JWTExpiry     time.Duration
	CORSOrigins   []string
	AuthRateRPS   float64
	AuthRateBurst int
	LogLevel      slog.Level
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseDSN: getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/quillpost?parseTime=true"),
		JWTSecret:   getEnv("JWT_SECRET", defaultJWTSecret),
		JWTIssuer:   getEnv("JWT_ISSUER", "quillpost"),
		CORSOrigins: parseCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	var err error
	if cfg.JWTExpiry, err = time.ParseDuration(getEnv("JWT_TTL", "24h")); err != nil {
		return Config{}, fmt.Errorf("parse JWT_TTL: %w", err)
	}
	if cfg.JWTExpiry <= 0 {
		return Config{}, errors.New("JWT_TTL must be positive")
	}

	if cfg.AuthRateRPS, err = strconv.ParseFloat(getEnv("AUTH_RATE_LIMIT_RPS", "5"), 64); err != nil {
		return Config{}, fmt.Errorf("parse AUTH_RATE_LIMIT_RPS: %w", err)
	}
	if cfg.AuthRateBurst, err = strconv.Atoi(getEnv("AUTH_RATE_LIMIT_BURST", "10")); err != nil {
		return Config{}, fmt.Errorf("parse AUTH_RATE_LIMIT_BURST: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}

	if cfg.Env == "production" && cfg.JWTSecret == defaultJWTSecret {
		return Config{}, errors.New("JWT_SECRET must be set in production environment")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseCSV(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
