// Package config loads application configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// Database
	DBDriver    string
	DatabaseDSN string

	// Cache
	CacheBackend  string // "memory" or "redis"
	RedisURL      string
	CacheTTL      time.Duration
	CacheCapacity int
}

// Load reads .env when present, then the environment. Missing values fall
// back to defaults suitable for local development.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DBDriver:      getEnv("DB_DRIVER", "sqlite3"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "file::memory:?cache=shared"),
		CacheBackend:  getEnv("CACHE_BACKEND", "memory"),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CacheTTL:      getDuration("CACHE_TTL", 5*time.Minute),
		CacheCapacity: getInt("CACHE_CAPACITY", 10000),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
