package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	BotToken        string
	OperatorHandles []string
	Database        DatabaseConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:        os.Getenv("BOT_TOKEN"),
		OperatorHandles: parseHandles(os.Getenv("OPERATOR_HANDLES")),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "relaybot"),
			User:     getEnv("DB_USER", "relaybot"),
			Password: os.Getenv("DB_PASSWORD"),
		},
	}

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if len(cfg.OperatorHandles) == 0 {
		return nil, fmt.Errorf("OPERATOR_HANDLES is required")
	}
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	return cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// parseHandles splits a comma-separated operator handle list, dropping
// surrounding whitespace, leading @ signs and empty entries.
func parseHandles(raw string) []string {
	var handles []string
	for _, part := range strings.Split(raw, ",") {
		handle := strings.TrimPrefix(strings.TrimSpace(part), "@")
		if handle != "" {
			handles = append(handles, handle)
		}
	}
	return handles
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
