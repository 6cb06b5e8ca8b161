// Package postgres provides a Postgres-backed store for labs that share one
// annotation database between operators. It mirrors the SQLite schema and
// error semantics.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

// Compile-time contract assertion
var _ ports.Store = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/seqtag?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		path TEXT NOT NULL DEFAULT '',
		run TEXT NOT NULL DEFAULT '',
		lane INTEGER NOT NULL DEFAULT 0,
		reads BIGINT NOT NULL DEFAULT 0,
		tags TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS samples (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS labels (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		taxon TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS sample_files (
		sample_id TEXT NOT NULL REFERENCES samples(id) ON DELETE CASCADE,
		file_id TEXT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
		PRIMARY KEY (sample_id, file_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sample_labels (
		sample_id TEXT NOT NULL REFERENCES samples(id) ON DELETE CASCADE,
		label_id TEXT NOT NULL REFERENCES labels(id) ON DELETE CASCADE,
		PRIMARY KEY (sample_id, label_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sample_files_file ON sample_files(file_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sample_labels_label ON sample_labels(label_id)`,
}

// Store persists records and relations to Postgres
type Store struct {
	db *sql.DB
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back
// to defaultDSN) and applies the schema.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w: %v", ports.ErrUnavailable, err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("execute ddl: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// ListFiles returns all files ordered by ID
func (s *Store) ListFiles(ctx context.Context) ([]domain.File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, path, run, lane, reads, array_to_string(tags, ',') FROM files ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select files: %w", mapError(err))
	}
	defer func() { _ = rows.Close() }()

	var files []domain.File
	for rows.Next() {
		var (
			f    domain.File
			tags string
		)
		if err := rows.Scan(&f.ID, &f.Name, &f.Path, &f.Run, &f.Lane, &f.Reads, &tags); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		if tags != "" {
			f.Tags = strings.Split(tags, ",")
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// ListSamples returns all samples ordered by ID
func (s *Store) ListSamples(ctx context.Context) ([]domain.Sample, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM samples ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select samples: %w", mapError(err))
	}
	defer func() { _ = rows.Close() }()

	var samples []domain.Sample
	for rows.Next() {
		var smp domain.Sample
		if err := rows.Scan(&smp.ID, &smp.Name, &smp.Description); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, smp)
	}
	return samples, rows.Err()
}

// ListLabels returns all labels ordered by ID
func (s *Store) ListLabels(ctx context.Context) ([]domain.Label, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, taxon FROM labels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select labels: %w", mapError(err))
	}
	defer func() { _ = rows.Close() }()

	var labels []domain.Label
	for rows.Next() {
		var l domain.Label
		if err := rows.Scan(&l.ID, &l.Name, &l.Taxon); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// ListRecords returns records of type t in their list view
func (s *Store) ListRecords(ctx context.Context, t domain.RecordType) ([]domain.Record, error) {
	var out []domain.Record
	switch t {
	case domain.RecordTypeFile:
		files, err := s.ListFiles(ctx)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			out = append(out, f.AsRecord())
		}
	case domain.RecordTypeSample:
		samples, err := s.ListSamples(ctx)
		if err != nil {
			return nil, err
		}
		for _, smp := range samples {
			out = append(out, smp.AsRecord())
		}
	case domain.RecordTypeLabel:
		labels, err := s.ListLabels(ctx)
		if err != nil {
			return nil, err
		}
		for _, l := range labels {
			out = append(out, l.AsRecord())
		}
	default:
		return nil, fmt.Errorf("list %s: %w", t, ports.ErrInvalid)
	}
	return out, nil
}

// GetRecord returns a single record
func (s *Store) GetRecord(ctx context.Context, t domain.RecordType, id string) (*domain.Record, error) {
	var (
		rec domain.Record
		err error
	)
	switch t {
	case domain.RecordTypeFile:
		var f domain.File
		err = s.db.QueryRowContext(ctx,
			`SELECT id, name, run, lane FROM files WHERE id = $1`, id,
		).Scan(&f.ID, &f.Name, &f.Run, &f.Lane)
		rec = f.AsRecord()
	case domain.RecordTypeSample:
		var smp domain.Sample
		err = s.db.QueryRowContext(ctx,
			`SELECT id, name, description FROM samples WHERE id = $1`, id,
		).Scan(&smp.ID, &smp.Name, &smp.Description)
		rec = smp.AsRecord()
	case domain.RecordTypeLabel:
		var l domain.Label
		err = s.db.QueryRowContext(ctx,
			`SELECT id, name, taxon FROM labels WHERE id = $1`, id,
		).Scan(&l.ID, &l.Name, &l.Taxon)
		rec = l.AsRecord()
	default:
		return nil, fmt.Errorf("get %s: %w", t, ports.ErrInvalid)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", t, id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", t, mapError(err))
	}
	return &rec, nil
}

// CreateFile inserts a file
func (s *Store) CreateFile(ctx context.Context, f domain.File) error {
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (id, name, path, run, lane, reads, tags) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.ID, f.Name, f.Path, f.Run, f.Lane, f.Reads, tags,
	)
	if err != nil {
		return fmt.Errorf("insert file %s: %w", f.ID, mapError(err))
	}
	return nil
}

// CreateSample inserts a sample
func (s *Store) CreateSample(ctx context.Context, smp domain.Sample) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO samples (id, name, description) VALUES ($1, $2, $3)`,
		smp.ID, smp.Name, smp.Description,
	)
	if err != nil {
		return fmt.Errorf("insert sample %s: %w", smp.ID, mapError(err))
	}
	return nil
}

// CreateLabel inserts a label
func (s *Store) CreateLabel(ctx context.Context, l domain.Label) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO labels (id, name, taxon) VALUES ($1, $2, $3)`,
		l.ID, l.Name, l.Taxon,
	)
	if err != nil {
		return fmt.Errorf("insert label %s: %w", l.ID, mapError(err))
	}
	return nil
}

// mapError translates Postgres error codes into port errors
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23503": // foreign_key_violation
		return fmt.Errorf("%w: %v", ports.ErrNotFound, err)
	case "23505": // unique_violation
		return fmt.Errorf("%w: %v", ports.ErrConflict, err)
	case "23514", "22001": // check_violation, string_data_right_truncation
		return fmt.Errorf("%w: %v", ports.ErrInvalid, err)
	case "40001", "40P01", "53300", "57P03": // serialization, deadlock, too_many_connections, cannot_connect_now
		return fmt.Errorf("%w: %v", ports.ErrUnavailable, err)
	}
	return err
}
