package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Default record location under the user's home directory, matching the
// documented layout. Overridable via EXPENSE_TRACKER_DB.
const (
	defaultDirName  = ".expense_tracker"
	defaultFileName = "expenses.json"
)

type Config struct {
	// Storage
	DataBackend  string // json | sqlite | memory
	RecordPath   string // JSON record file
	SQLiteDBPath string

	// Logging
	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		DataBackend:  getEnv("DATA_BACKEND", "json"),
		RecordPath:   getEnv("EXPENSE_TRACKER_DB", defaultRecordPath()),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", defaultSQLitePath()),
		LogLevel:     getEnv("LOG_LEVEL", "warn"),
	}
	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	validBackends := []string{"json", "sqlite", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "json" && c.RecordPath == "" {
		errs = append(errs, "record path cannot be empty when using json backend")
	}
	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func defaultRecordPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// No resolvable home: fall back to the working directory.
		return filepath.Join(defaultDirName, defaultFileName)
	}
	return filepath.Join(home, defaultDirName, defaultFileName)
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(defaultDirName, "expenses.db")
	}
	return filepath.Join(home, defaultDirName, "expenses.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
