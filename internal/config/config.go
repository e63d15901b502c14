package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	PortfolioDBPath string
	ReferenceDBPath string
	RiskFreeRate    float64 // Annual risk-free rate used when a request doesn't supply one
	RevalueSchedule string  // Cron schedule for the nightly portfolio revaluation
	ReloadSchedule  string  // Cron schedule for reference snapshot reloads
	LogLevel        string
	Port            int
	DevMode         bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("GO_PORT", 8001),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		PortfolioDBPath: getEnv("PORTFOLIO_DB_PATH", "./data/portfolio.db"),
		ReferenceDBPath: getEnv("REFERENCE_DB_PATH", "./data/reference.db"),
		RiskFreeRate:    getEnvAsFloat("RISK_FREE_RATE", 0.04),
		RevalueSchedule: getEnv("REVALUE_SCHEDULE", "0 0 2 * * *"),    // 2 AM daily
		ReloadSchedule:  getEnv("RELOAD_SCHEDULE", "0 30 1 * * *"),    // Before revaluation
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.PortfolioDBPath == "" {
		return fmt.Errorf("PORTFOLIO_DB_PATH is required")
	}
	if c.ReferenceDBPath == "" {
		return fmt.Errorf("REFERENCE_DB_PATH is required")
	}
	if c.RiskFreeRate < 0 {
		return fmt.Errorf("RISK_FREE_RATE must be non-negative")
	}

	return nil
}

// Helper functions
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
