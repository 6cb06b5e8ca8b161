package ports

import (
	"context"

	"seqtag/internal/domain"
)

// RelationSource reads the authoritative membership of a relation
type RelationSource interface {
	// FetchCurrent returns the item IDs currently linked to the relation's owner.
	// It must always hit the store; callers never get a cached answer.
	FetchCurrent(ctx context.Context, rel domain.Relation) ([]string, error)
}

// MutationSink links and unlinks single items.
// Both operations are idempotent: repeating an applied operation either
// succeeds or returns ErrAlreadyApplied.
type MutationSink interface {
	ApplyAdd(ctx context.Context, rel domain.Relation, itemID string) error
	ApplyRemove(ctx context.Context, rel domain.Relation, itemID string) error
}

// RelationStore is a store that can both read and mutate relations
type RelationStore interface {
	RelationSource
	MutationSink
}
