package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

// ListFiles returns all files ordered by ID
func (s *Store) ListFiles(ctx context.Context) ([]domain.File, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, path, run, lane, reads, tags
		FROM files ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []domain.File
	for rows.Next() {
		var (
			f    domain.File
			tags string
		)
		if err := rows.Scan(&f.ID, &f.Name, &f.Path, &f.Run, &f.Lane, &f.Reads, &tags); err != nil {
			return nil, err
		}
		f.Tags = splitTags(tags)
		files = append(files, f)
	}
	return files, rows.Err()
}

// ListSamples returns all samples ordered by ID
func (s *Store) ListSamples(ctx context.Context) ([]domain.Sample, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM samples ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}
	defer rows.Close()

	var samples []domain.Sample
	for rows.Next() {
		var smp domain.Sample
		if err := rows.Scan(&smp.ID, &smp.Name, &smp.Description); err != nil {
			return nil, err
		}
		samples = append(samples, smp)
	}
	return samples, rows.Err()
}

// ListLabels returns all labels ordered by ID
func (s *Store) ListLabels(ctx context.Context) ([]domain.Label, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, taxon FROM labels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	defer rows.Close()

	var labels []domain.Label
	for rows.Next() {
		var l domain.Label
		if err := rows.Scan(&l.ID, &l.Name, &l.Taxon); err != nil {
			return nil, err
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

// GetRecord retrieves a record by type and ID
func (s *Store) GetRecord(ctx context.Context, t domain.RecordType, id string) (*domain.Record, error) {
	var (
		rec domain.Record
		err error
	)
	switch t {
	case domain.RecordTypeFile:
		var (
			f    domain.File
			tags string
		)
		err = s.db.QueryRowContext(ctx, `
			SELECT id, name, path, run, lane, reads, tags
			FROM files WHERE id = ?
		`, id).Scan(&f.ID, &f.Name, &f.Path, &f.Run, &f.Lane, &f.Reads, &tags)
		f.Tags = splitTags(tags)
		rec = f.AsRecord()
	case domain.RecordTypeSample:
		var smp domain.Sample
		err = s.db.QueryRowContext(ctx,
			`SELECT id, name, description FROM samples WHERE id = ?`, id,
		).Scan(&smp.ID, &smp.Name, &smp.Description)
		rec = smp.AsRecord()
	case domain.RecordTypeLabel:
		var l domain.Label
		err = s.db.QueryRowContext(ctx,
			`SELECT id, name, taxon FROM labels WHERE id = ?`, id,
		).Scan(&l.ID, &l.Name, &l.Taxon)
		rec = l.AsRecord()
	default:
		return nil, fmt.Errorf("get %s: %w", t, ports.ErrInvalid)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", t, id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", t, err)
	}
	return &rec, nil
}

// CreateFile inserts a file
func (s *Store) CreateFile(ctx context.Context, f domain.File) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files (id, name, path, run, lane, reads, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.Name, f.Path, f.Run, f.Lane, f.Reads, strings.Join(f.Tags, ","))
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", f.ID, mapError(err))
	}
	return nil
}

// CreateSample inserts a sample
func (s *Store) CreateSample(ctx context.Context, smp domain.Sample) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO samples (id, name, description) VALUES (?, ?, ?)`,
		smp.ID, smp.Name, smp.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to create sample %s: %w", smp.ID, mapError(err))
	}
	return nil
}

// CreateLabel inserts a label
func (s *Store) CreateLabel(ctx context.Context, l domain.Label) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO labels (id, name, taxon) VALUES (?, ?, ?)`,
		l.ID, l.Name, l.Taxon,
	)
	if err != nil {
		return fmt.Errorf("failed to create label %s: %w", l.ID, mapError(err))
	}
	return nil
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
