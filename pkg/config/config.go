package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// External APIs
	BLS   BLSConfig
	Yahoo YahooConfig

	// Projection
	Projection ProjectionConfig

	// HTTP client
	HTTPTimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// BLSConfig holds BLS (Bureau of Labor Statistics) API configuration.
type BLSConfig struct {
	BaseURL  string
	APIKey   string // optional registration key for higher request limits
	SeriesID string // CPI series to use, default CPI-U less food and energy
}

// YahooConfig holds Yahoo Finance configuration.
type YahooConfig struct {
	BaseURL string
}

// ProjectionConfig holds knobs for the projection pipeline.
type ProjectionConfig struct {
	// InflationSeriesEnabled controls whether the inflation-adjusted
	// starting pay series is computed. When disabled the series is
	// omitted from responses.
	InflationSeriesEnabled bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		BLS: BLSConfig{
			BaseURL:  getEnv("BLS_BASE_URL", "https://api.bls.gov/publicAPI/v1/timeseries/data/"),
			APIKey:   getEnv("BLS_API_KEY", ""),
			SeriesID: getEnv("BLS_SERIES_ID", "CUUR0000SA0L1E"),
		},

		Yahoo: YahooConfig{
			BaseURL: getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		},

		Projection: ProjectionConfig{
			InflationSeriesEnabled: getEnvAsBool("INFLATION_SERIES_ENABLED", true),
		},

		HTTPTimeout: getEnvAsDuration("HTTP_TIMEOUT", "30s"),

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.BLS.SeriesID == "" {
		return fmt.Errorf("BLS_SERIES_ID must not be empty")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
