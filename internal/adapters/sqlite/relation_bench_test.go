package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"seqtag/internal/domain"
)

// BenchmarkFetchCurrent measures reading a large relation from a file database
func BenchmarkFetchCurrent(b *testing.B) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatalf("failed to open store: %v", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			b.Fatalf("failed to close store: %v", err)
		}
	}()

	rel := domain.Relation{Kind: domain.RelationFileSample, OwnerID: "S-1"}
	if err := s.CreateSample(ctx, domain.Sample{ID: "S-1", Name: "bench"}); err != nil {
		b.Fatalf("CreateSample failed: %v", err)
	}
	for i := range 1000 {
		id := fmt.Sprintf("F%04d", i)
		if err := s.CreateFile(ctx, domain.File{ID: id, Name: id}); err != nil {
			b.Fatalf("CreateFile failed: %v", err)
		}
		if err := s.ApplyAdd(ctx, rel, id); err != nil {
			b.Fatalf("ApplyAdd failed: %v", err)
		}
	}

	b.ResetTimer()
	for b.Loop() {
		if _, err := s.FetchCurrent(ctx, rel); err != nil {
			b.Fatalf("fetch failed: %v", err)
		}
	}
}
