package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Engine   EngineConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string
	RateLimit       int
	RateLimitWindow time.Duration
}

// DatabaseConfig holds the persistent store settings. An empty DSN selects
// the in-memory store.
type DatabaseConfig struct {
	DSN string
}

// EngineConfig holds bidding engine settings.
type EngineConfig struct {
	SweepInterval   time.Duration
	NotifyQueueSize int
}

// Load loads configuration from environment variables, with .env support.
func Load() *Config {
	// Ignore error if no .env file exists
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			RateLimit:       getEnvInt("RATE_LIMIT", 100),
			RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DB_DSN", ""),
		},
		Engine: EngineConfig{
			SweepInterval:   getEnvDuration("SWEEP_INTERVAL", 15*time.Second),
			NotifyQueueSize: getEnvInt("NOTIFY_QUEUE_SIZE", 256),
		},
	}
}

// getEnv gets an environment variable with a fallback default value.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
