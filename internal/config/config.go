// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pkordes/companion/internal/docstore"
)

// Config holds all configuration values for the API server and the terminal client.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// StoreBackend selects the document store: postgres, sqlite or memory.
	// Defaults to "postgres".
	StoreBackend string

	// DatabaseURL is the Postgres connection string. Required when
	// StoreBackend is postgres, ignored otherwise.
	DatabaseURL string

	// SQLitePath is the database file of the sqlite backend. Defaults to "companion.db".
	SQLitePath string

	// AMQPURL enables the roster feed when set. Optional.
	AMQPURL string

	// AMQPExchange is the fanout exchange roster snapshots are published to.
	// Defaults to "companion.roster".
	AMQPExchange string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// LogFile is where the terminal client writes its log so the screen
	// stays clean. Defaults to "companion-tui.log".
	LogFile string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first variable holding an invalid value.
func Load() (Config, error) {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", docstore.BackendPostgres)),
		SQLitePath:   getEnv("SQLITE_PATH", "companion.db"),
		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "companion.roster"),
		LogFile:      getEnv("LOG_FILE", "companion-tui.log"),
	}

	if backends := docstore.Backends(); !slices.Contains(backends, cfg.StoreBackend) {
		return Config{}, fmt.Errorf("STORE_BACKEND must be one of %s: got %q", strings.Join(backends, ", "), cfg.StoreBackend)
	}

	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || maxBody <= 0 {
		return Config{}, fmt.Errorf("MAX_BODY_BYTES must be a positive integer: got %q", os.Getenv("MAX_BODY_BYTES"))
	}
	cfg.MaxBodyBytes = maxBody

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.StoreBackend == docstore.BackendPostgres && cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
