// Package sqlite stores records and relations in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"

	"seqtag/internal/ports"
)

const schemaVersion = "1"

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// Store implements ports.Store using SQLite
type Store struct {
	db     *sql.DB
	dbPath string
}

// Ensure Store implements ports.Store
var _ ports.Store = (*Store)(nil)

// Open initializes the database at dbPath, creating it and its parent
// directory when missing
func Open(ctx context.Context, dbPath string) (*Store, error) {
	dbPath, err := expandHome(dbPath)
	if err != nil {
		return nil, err
	}

	dsn := MemoryPath
	if dbPath != MemoryPath {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		// WAL lets the TUI read while a commit is writing
		dsn = "file:" + dbPath + "?_journal_mode=WAL&_txlock=immediate"
	}
	if strings.Contains(dsn, "?") {
		dsn += "&"
	} else {
		dsn += "?"
	}
	dsn += "_foreign_keys=on&_busy_timeout=5000"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == MemoryPath {
		// Every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file, or MemoryPath
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) migrate(ctx context.Context) error {
	// Performance pragmas + schema in single batch (reduces round-trips)
	_, err := s.db.ExecContext(ctx, `
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS files (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			path TEXT NOT NULL DEFAULT '',
			run TEXT NOT NULL DEFAULT '',
			lane INTEGER NOT NULL DEFAULT 0,
			reads INTEGER NOT NULL DEFAULT 0,
			tags TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS samples (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS labels (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			taxon TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS sample_files (
			sample_id TEXT NOT NULL REFERENCES samples(id) ON DELETE CASCADE,
			file_id TEXT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
			PRIMARY KEY (sample_id, file_id)
		);
		CREATE TABLE IF NOT EXISTS sample_labels (
			sample_id TEXT NOT NULL REFERENCES samples(id) ON DELETE CASCADE,
			label_id TEXT NOT NULL REFERENCES labels(id) ON DELETE CASCADE,
			PRIMARY KEY (sample_id, label_id)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sample_files_file ON sample_files(file_id);
		CREATE INDEX IF NOT EXISTS idx_sample_labels_label ON sample_labels(label_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to setup database: %w", err)
	}

	var version string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion)
		if err != nil {
			return fmt.Errorf("failed to update metadata: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read metadata: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("database schema version %s, expected %s", version, schemaVersion)
	}
	return nil
}

// expandHome expands a leading ~ in path
func expandHome(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// mapError translates constraint violations into port errors
func mapError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %v", ports.ErrNotFound, err)
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		return fmt.Errorf("%w: %v", ports.ErrConflict, err)
	}
	switch sqliteErr.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return fmt.Errorf("%w: %v", ports.ErrUnavailable, err)
	}
	return err
}
