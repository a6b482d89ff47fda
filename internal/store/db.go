package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection with ridedash queries
type DB struct {
	*sql.DB
}

// Sentinel errors returned by queries
var (
	// ErrNoAuth is returned when no authentication is stored
	ErrNoAuth = errors.New("no authentication stored")
	// ErrRideNotFound is returned when a ride doesn't exist
	ErrRideNotFound = errors.New("ride not found")
	// ErrNoStreams is returned when a ride has no stored streams
	ErrNoStreams = errors.New("no streams stored for ride")
)

// Open opens the SQLite database at path, creating it if necessary,
// and applies pending migrations.
func Open(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps :memory: databases intact
	sqlDB.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrateUp(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &DB{sqlDB}, nil
}

// OpenDefault opens the database at ~/.ridedash/data.db
func OpenDefault() (*DB, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("getting db path: %w", err)
	}
	return Open(path)
}

// DefaultPath returns the path to the SQLite database file
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".ridedash", "data.db"), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
