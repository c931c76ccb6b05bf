package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// GitHub
	GitHubToken  string
	GitHubAPIURL string // empty means api.github.com
	HTTPTimeout  time.Duration

	// Series
	PageLimit    int
	PerPage      int
	HorizonWeeks int

	// Query journal
	JournalType string // "none", "sqlite" or "postgres"
	SQLitePath  string
	PostgresURL string

	// API Server
	APIPort string
	APIHost string

	// CLI
	APIEndpoint string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		GitHubToken:  getEnv("GITHUB_TOKEN", ""),
		GitHubAPIURL: getEnv("GITHUB_API_URL", ""),
		HTTPTimeout:  getDuration("HTTP_TIMEOUT", 30*time.Second),
		PageLimit:    getInt("PAGE_LIMIT", 10),
		PerPage:      getInt("PER_PAGE", 100),
		HorizonWeeks: getInt("HORIZON_WEEKS", 52),
		JournalType:  getEnv("JOURNAL_TYPE", "none"),
		SQLitePath:   getEnv("SQLITE_PATH", "./queries.db"),
		PostgresURL:  getEnv("POSTGRES_URL", ""),
		APIPort:      getEnv("API_PORT", "8080"),
		APIHost:      getEnv("API_HOST", "localhost"),
		APIEndpoint:  getEnv("API_ENDPOINT", "http://localhost:8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "console"),
	}, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Validate validates the configuration. A missing GitHub token is allowed; the
// unauthenticated quota is simply much lower.
func (c *Config) Validate() error {
	if c.PageLimit <= 0 {
		return &ConfigError{Field: "PAGE_LIMIT", Message: "must be positive"}
	}
	if c.PerPage <= 0 || c.PerPage > 100 {
		return &ConfigError{Field: "PER_PAGE", Message: "must be between 1 and 100"}
	}
	if c.HorizonWeeks <= 0 {
		return &ConfigError{Field: "HORIZON_WEEKS", Message: "must be positive"}
	}
	switch c.JournalType {
	case "none", "sqlite":
	case "postgres":
		if c.PostgresURL == "" {
			return &ConfigError{Field: "POSTGRES_URL", Message: "PostgreSQL URL is required when JOURNAL_TYPE is 'postgres'"}
		}
	default:
		return &ConfigError{Field: "JOURNAL_TYPE", Message: "must be 'none', 'sqlite' or 'postgres'"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
