package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Portfolio PortfolioConfig
	Avanza    AvanzaConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// PortfolioConfig holds valuation defaults. BaseCurrency is the currency all
// holdings are converted into; WarningThreshold is the change-percent below
// which a holding is flagged; RefreshIntervalMinutes enables the scheduled
// valuation when > 0. Threshold and interval can be overridden at runtime
// through the settings API.
type PortfolioConfig struct {
	BaseCurrency           string
	WarningThreshold       float64
	RefreshIntervalMinutes int
}

// AvanzaConfig holds market-data client configuration
type AvanzaConfig struct {
	ProxyURL string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	threshold, err := getEnvFloat("WARNING_THRESHOLD", -2.0)
	if err != nil {
		return nil, err
	}

	interval, err := getEnvInt("REFRESH_INTERVAL_MINUTES", 0)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/tracker.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Portfolio: PortfolioConfig{
			BaseCurrency:           getEnv("BASE_CURRENCY", "SEK"),
			WarningThreshold:       threshold,
			RefreshIntervalMinutes: interval,
		},
		Avanza: AvanzaConfig{
			ProxyURL: getEnv("AVANZA_PROXY", ""),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
