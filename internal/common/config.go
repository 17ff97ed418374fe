package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Log      LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// LogConfig holds logging-related configuration
type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        getEnv("SNAPCEIPT_DB_PATH", "snapceipt.db"),
			BusyTimeout: getEnvAsDuration("SNAPCEIPT_BUSY_TIMEOUT", 5*time.Second),
		},
		Log: LogConfig{
			Level: getEnv("SNAPCEIPT_LOG_LEVEL", "info"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return NewAppError("CONFIG_ERROR", "SNAPCEIPT_DB_PATH is required", ErrInvalidInput)
	}
	if c.Database.BusyTimeout < 0 {
		return NewAppError("CONFIG_ERROR", "SNAPCEIPT_BUSY_TIMEOUT must not be negative", ErrInvalidInput)
	}
	return nil
}
