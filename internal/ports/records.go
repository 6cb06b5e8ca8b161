package ports

import (
	"context"

	"seqtag/internal/domain"
)

// RecordRepository defines the record operations the front ends need
type RecordRepository interface {
	// List operations (ordered by ID)
	ListFiles(ctx context.Context) ([]domain.File, error)
	ListSamples(ctx context.Context) ([]domain.Sample, error)
	ListLabels(ctx context.Context) ([]domain.Label, error)

	// ListRecords lists any record type in its common list view
	ListRecords(ctx context.Context, t domain.RecordType) ([]domain.Record, error)

	// GetRecord returns ErrNotFound when no record has the ID
	GetRecord(ctx context.Context, t domain.RecordType, id string) (*domain.Record, error)

	// Create operations return ErrConflict when the ID is taken
	CreateFile(ctx context.Context, f domain.File) error
	CreateSample(ctx context.Context, s domain.Sample) error
	CreateLabel(ctx context.Context, l domain.Label) error
}

// Store is everything a backend provides
type Store interface {
	RecordRepository
	RelationStore
	Close() error
}
