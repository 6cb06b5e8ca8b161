package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

// relationTable describes the join table backing one relation kind
type relationTable struct {
	table      string
	ownerTable string
	ownerCol   string
	itemCol    string
}

var relationTables = map[domain.RelationKind]relationTable{
	domain.RelationFileSample:  {table: "sample_files", ownerTable: "samples", ownerCol: "sample_id", itemCol: "file_id"},
	domain.RelationSampleLabel: {table: "sample_labels", ownerTable: "samples", ownerCol: "sample_id", itemCol: "label_id"},
}

func tableFor(kind domain.RelationKind) (relationTable, error) {
	t, ok := relationTables[kind]
	if !ok {
		return relationTable{}, fmt.Errorf("relation kind %s: %w", kind, ports.ErrInvalid)
	}
	return t, nil
}

// FetchCurrent returns the item IDs linked to the relation owner, ordered by ID
func (s *Store) FetchCurrent(ctx context.Context, rel domain.Relation) ([]string, error) {
	t, err := tableFor(rel.Kind)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(ctx, s.db, t, rel); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? ORDER BY %s`, t.itemCol, t.table, t.ownerCol, t.itemCol),
		rel.OwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rel, mapError(err))
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ApplyAdd links itemID to the relation owner. A missing owner or item is
// reported by the foreign key as ErrNotFound.
func (s *Store) ApplyAdd(ctx context.Context, rel domain.Relation, itemID string) error {
	t, err := tableFor(rel.Kind)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT OR IGNORE INTO %s (%s, %s) VALUES (?, ?)`, t.table, t.ownerCol, t.itemCol),
		rel.OwnerID, itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to link %s to %s: %w", itemID, rel, mapError(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("link %s to %s: %w", itemID, rel, ports.ErrAlreadyApplied)
	}
	return nil
}

// ApplyRemove unlinks itemID from the relation owner
func (s *Store) ApplyRemove(ctx context.Context, rel domain.Relation, itemID string) error {
	t, err := tableFor(rel.Kind)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkOwner(ctx, tx, t, rel); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND %s = ?`, t.table, t.ownerCol, t.itemCol),
			rel.OwnerID, itemID,
		)
		if err != nil {
			return fmt.Errorf("failed to unlink %s from %s: %w", itemID, rel, mapError(err))
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("unlink %s from %s: %w", itemID, rel, ports.ErrAlreadyApplied)
		}
		return nil
	})
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func checkOwner(ctx context.Context, q querier, t relationTable, rel domain.Relation) error {
	var one int
	err := q.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT 1 FROM %s WHERE id = ?`, t.ownerTable), rel.OwnerID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%s %s: %w", rel.Kind.OwnerType(), rel.OwnerID, ports.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check owner of %s: %w", rel, mapError(err))
	}
	return nil
}
