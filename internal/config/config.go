// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/arefin/flowboard/internal/auth"
)

// Config holds everything the server needs to start.
type Config struct {
	Port       int
	DBPath     string
	JWTSecret  string
	SessionTTL time.Duration
	BcryptCost int // 0 means the auth package default
}

// Load reads a .env file if present, then the environment. A missing .env is
// not an error; production deployments set real env vars.
//
// JWT_SECRET is the only required variable; everything else has a default.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:       8080,
		DBPath:     "data/flowboard.db",
		SessionTTL: auth.DefaultSessionTTL,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: JWT_SECRET is required (e.g. JWT_SECRET=$(openssl rand -hex 32))")
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("config: invalid SESSION_TTL %q", v)
		}
		cfg.SessionTTL = ttl
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid BCRYPT_COST %q: %w", v, err)
		}
		cfg.BcryptCost = cost
	}

	return cfg, nil
}
