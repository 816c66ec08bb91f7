// Package backend selects and constructs the storage backend the tracker
// runs against.
package backend

import (
	"fmt"

	"spend/internal/log"
	"spend/internal/storage"
)

// Type represents the kind of storage backend
type Type string

const (
	JSONBackend   Type = "json"
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case JSONBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// JSON specific
	RecordPath string

	// SQLite specific
	SQLiteDBPath string
}

// Result contains the store instance and a cleanup function.
type Result struct {
	Store   storage.Store
	Cleanup func() error
}

// Factory creates stores based on configuration
type Factory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Create builds a store for the configured backend type.
func (f *Factory) Create(cfg Config) (*Result, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case JSONBackend:
		store, err := storage.NewJSONStore(cfg.RecordPath)
		if err != nil {
			return nil, fmt.Errorf("initialize json store: %w", err)
		}
		f.logger.Debug("Initialized JSON backend", log.FieldPath, cfg.RecordPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	case SQLiteBackend:
		store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		f.logger.Debug("Initialized SQLite backend", log.FieldPath, cfg.SQLiteDBPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	case MemoryBackend:
		store := storage.NewMemoryStore()
		f.logger.Debug("Initialized memory backend")
		return &Result{Store: store, Cleanup: store.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
