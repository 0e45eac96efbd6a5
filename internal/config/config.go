// Package config loads library configuration from the environment, with
// optional .env file support for local development.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the tracker needs to wire itself together.
type Config struct {
	// LocalDBPath is where the device-local SQLite store lives (guest
	// records and the session hint).
	LocalDBPath string

	// RemoteEndpoint identifies the remote backend. The library itself
	// does not dial it; it is recorded here for whichever remote.Store
	// implementation the host application plugs in.
	RemoteEndpoint string

	// LogLevel is the slog level name: debug, info, warn, error.
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		LocalDBPath:    getEnv("EXPENSE_DB_PATH", "./data/expenses.db"),
		RemoteEndpoint: getEnv("REMOTE_ENDPOINT", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the configuration and returns an error describing every
// invalid field.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.LocalDBPath) == "" {
		problems = append(problems, "local db path must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level %q", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
