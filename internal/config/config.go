package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	DND5E  DND5EConfig
	Combat CombatConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ListenAddr string
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	URL string // Optional: empty means in-memory persistence
}

// DND5EConfig holds D&D 5e API configuration
type DND5EConfig struct {
	BaseURL string
}

// CombatConfig holds combat engine behavior flags
type CombatConfig struct {
	StrictTurnOrder bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			ListenAddr: getEnvOrDefault("LISTEN_ADDR", ":8080"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		DND5E: DND5EConfig{
			BaseURL: getEnvOrDefault("DND5E_API_URL", "https://www.dnd5eapi.co/api"),
		},
		Combat: CombatConfig{
			StrictTurnOrder: getEnvAsBoolOrDefault("STRICT_TURN_ORDER", false),
		},
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
