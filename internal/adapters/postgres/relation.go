package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

type relationQueries struct {
	owner  string
	fetch  string
	add    string
	remove string
}

var relationSQL = map[domain.RelationKind]relationQueries{
	domain.RelationFileSample: {
		owner:  `SELECT 1 FROM samples WHERE id = $1`,
		fetch:  `SELECT file_id FROM sample_files WHERE sample_id = $1 ORDER BY file_id`,
		add:    `INSERT INTO sample_files (sample_id, file_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		remove: `DELETE FROM sample_files WHERE sample_id = $1 AND file_id = $2`,
	},
	domain.RelationSampleLabel: {
		owner:  `SELECT 1 FROM samples WHERE id = $1`,
		fetch:  `SELECT label_id FROM sample_labels WHERE sample_id = $1 ORDER BY label_id`,
		add:    `INSERT INTO sample_labels (sample_id, label_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		remove: `DELETE FROM sample_labels WHERE sample_id = $1 AND label_id = $2`,
	},
}

func queriesFor(kind domain.RelationKind) (relationQueries, error) {
	q, ok := relationSQL[kind]
	if !ok {
		return relationQueries{}, fmt.Errorf("relation kind %s: %w", kind, ports.ErrInvalid)
	}
	return q, nil
}

func (s *Store) checkOwner(ctx context.Context, q relationQueries, rel domain.Relation) error {
	var one int
	err := s.db.QueryRowContext(ctx, q.owner, rel.OwnerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", rel.Kind.OwnerType(), rel.OwnerID, ports.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("select owner: %w", mapError(err))
	}
	return nil
}

// FetchCurrent returns the linked item IDs in ascending order
func (s *Store) FetchCurrent(ctx context.Context, rel domain.Relation) ([]string, error) {
	q, err := queriesFor(rel.Kind)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, q, rel); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q.fetch, rel.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", rel, mapError(err))
	}
	defer func() { _ = rows.Close() }()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", rel, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ApplyAdd links itemID to the relation owner
func (s *Store) ApplyAdd(ctx context.Context, rel domain.Relation, itemID string) error {
	q, err := queriesFor(rel.Kind)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, q.add, rel.OwnerID, itemID)
	if err != nil {
		return fmt.Errorf("link %s to %s: %w", itemID, rel, mapError(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("link %s to %s: %w", itemID, rel, ports.ErrAlreadyApplied)
	}
	return nil
}

// ApplyRemove unlinks itemID from the relation owner
func (s *Store) ApplyRemove(ctx context.Context, rel domain.Relation, itemID string) error {
	q, err := queriesFor(rel.Kind)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, q.remove, rel.OwnerID, itemID)
	if err != nil {
		return fmt.Errorf("unlink %s from %s: %w", itemID, rel, mapError(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if err := s.checkOwner(ctx, q, rel); err != nil {
			return err
		}
		return fmt.Errorf("unlink %s from %s: %w", itemID, rel, ports.ErrAlreadyApplied)
	}
	return nil
}
