// Package config resolves runtime settings from SEQTAG_* environment
// variables. Front ends override individual fields from their flags.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Supported store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const (
	DefaultDriver    = DriverSQLite
	DefaultBatchSize = 100
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Config is the resolved runtime configuration
type Config struct {
	Driver    string
	DBPath    string // sqlite database file
	DSN       string // postgres connection string
	BatchSize int
	LogLevel  string
	LogFormat string
}

// Load reads every setting from the environment, falling back to defaults
func Load() (*Config, error) {
	batchSize, err := BatchSize()
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Driver:    Driver(),
		DBPath:    DatabasePath(),
		DSN:       os.Getenv("SEQTAG_DSN"),
		BatchSize: batchSize,
		LogLevel:  envOr("SEQTAG_LOG_LEVEL", DefaultLogLevel),
		LogFormat: envOr("SEQTAG_LOG_FORMAT", DefaultLogFormat),
	}
	return cfg, cfg.Validate()
}

// Validate checks the driver and batch size
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("invalid driver %q (want %s, %s or %s)", c.Driver, DriverSQLite, DriverPostgres, DriverMemory)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("invalid batch size %d: must be positive", c.BatchSize)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// DatabasePath returns the sqlite path from SEQTAG_DB, falling back to the
// XDG data directory.
func DatabasePath() string {
	if env := os.Getenv("SEQTAG_DB"); env != "" {
		return env
	}
	return filepath.Join(DataDir(), "seqtag.db")
}

// DataDir is where seqtag keeps its database and log file
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "seqtag")
}

// Driver returns the store driver from SEQTAG_DRIVER, falling back to DefaultDriver
func Driver() string {
	return strings.ToLower(envOr("SEQTAG_DRIVER", DefaultDriver))
}

// BatchSize returns the mutation chunk size from SEQTAG_BATCH_SIZE
func BatchSize() (int, error) {
	env := os.Getenv("SEQTAG_BATCH_SIZE")
	if env == "" {
		return DefaultBatchSize, nil
	}
	n, err := strconv.Atoi(env)
	if err != nil {
		return 0, fmt.Errorf("invalid SEQTAG_BATCH_SIZE %q: %w", env, err)
	}
	return n, nil
}

func envOr(key, fallback string) string {
	if env := os.Getenv(key); env != "" {
		return env
	}
	return fallback
}

// ParseLevel maps a level name to a slog level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log level: %s", s)
	}
}

// NewLogger builds the base logger writing to w
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch c.LogFormat {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "text", "":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return nil, fmt.Errorf("invalid log format: %s", c.LogFormat)
	}
	return slog.New(handler), nil
}
