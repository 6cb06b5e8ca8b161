// Package memory provides an in-memory record and relation store used by
// tests and by the --driver=memory demo mode.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

// Compile-time contract assertion
var _ ports.Store = (*Store)(nil)

// Store keeps records and relations in maps guarded by one mutex
type Store struct {
	mu        sync.RWMutex
	files     map[string]domain.File
	samples   map[string]domain.Sample
	labels    map[string]domain.Label
	relations map[domain.Relation]domain.Set[string]
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		files:     map[string]domain.File{},
		samples:   map[string]domain.Sample{},
		labels:    map[string]domain.Label{},
		relations: map[domain.Relation]domain.Set[string]{},
	}
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

func sortedValues[V any](m map[string]V) []V {
	keys := slices.Sorted(maps.Keys(m))
	out := make([]V, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

// ListFiles returns all files ordered by ID
func (s *Store) ListFiles(_ context.Context) ([]domain.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.files), nil
}

// ListSamples returns all samples ordered by ID
func (s *Store) ListSamples(_ context.Context) ([]domain.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.samples), nil
}

// ListLabels returns all labels ordered by ID
func (s *Store) ListLabels(_ context.Context) ([]domain.Label, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.labels), nil
}

// ListRecords returns records of type t in their list view
func (s *Store) ListRecords(ctx context.Context, t domain.RecordType) ([]domain.Record, error) {
	var out []domain.Record
	switch t {
	case domain.RecordTypeFile:
		files, _ := s.ListFiles(ctx)
		for _, f := range files {
			out = append(out, f.AsRecord())
		}
	case domain.RecordTypeSample:
		samples, _ := s.ListSamples(ctx)
		for _, smp := range samples {
			out = append(out, smp.AsRecord())
		}
	case domain.RecordTypeLabel:
		labels, _ := s.ListLabels(ctx)
		for _, l := range labels {
			out = append(out, l.AsRecord())
		}
	default:
		return nil, fmt.Errorf("list %s: %w", t, ports.ErrInvalid)
	}
	slices.SortFunc(out, func(a, b domain.Record) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// GetRecord returns a single record
func (s *Store) GetRecord(_ context.Context, t domain.RecordType, id string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		rec domain.Record
		ok  bool
	)
	switch t {
	case domain.RecordTypeFile:
		var f domain.File
		if f, ok = s.files[id]; ok {
			rec = f.AsRecord()
		}
	case domain.RecordTypeSample:
		var smp domain.Sample
		if smp, ok = s.samples[id]; ok {
			rec = smp.AsRecord()
		}
	case domain.RecordTypeLabel:
		var l domain.Label
		if l, ok = s.labels[id]; ok {
			rec = l.AsRecord()
		}
	default:
		return nil, fmt.Errorf("get %s: %w", t, ports.ErrInvalid)
	}
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", t, id, ports.ErrNotFound)
	}
	return &rec, nil
}

// CreateFile adds a file
func (s *Store) CreateFile(_ context.Context, f domain.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[f.ID]; ok {
		return fmt.Errorf("file %s: %w", f.ID, ports.ErrConflict)
	}
	s.files[f.ID] = f
	return nil
}

// CreateSample adds a sample
func (s *Store) CreateSample(_ context.Context, smp domain.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.samples[smp.ID]; ok {
		return fmt.Errorf("sample %s: %w", smp.ID, ports.ErrConflict)
	}
	s.samples[smp.ID] = smp
	return nil
}

// CreateLabel adds a label
func (s *Store) CreateLabel(_ context.Context, l domain.Label) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.labels[l.ID]; ok {
		return fmt.Errorf("label %s: %w", l.ID, ports.ErrConflict)
	}
	s.labels[l.ID] = l
	return nil
}

// FetchCurrent returns the linked item IDs in ascending order
func (s *Store) FetchCurrent(_ context.Context, rel domain.Relation) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOwner(rel); err != nil {
		return nil, err
	}
	return domain.Sorted(s.relations[rel]), nil
}

// ApplyAdd links itemID to the relation owner
func (s *Store) ApplyAdd(_ context.Context, rel domain.Relation, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOwner(rel); err != nil {
		return err
	}
	if !s.hasItem(rel.Kind.ItemType(), itemID) {
		return fmt.Errorf("%s %s: %w", rel.Kind.ItemType(), itemID, ports.ErrNotFound)
	}
	members, ok := s.relations[rel]
	if !ok {
		members = domain.NewSet[string]()
		s.relations[rel] = members
	}
	if members.Has(itemID) {
		return fmt.Errorf("link %s to %s: %w", itemID, rel, ports.ErrAlreadyApplied)
	}
	members.Add(itemID)
	return nil
}

// ApplyRemove unlinks itemID from the relation owner
func (s *Store) ApplyRemove(_ context.Context, rel domain.Relation, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOwner(rel); err != nil {
		return err
	}
	members := s.relations[rel]
	if !members.Has(itemID) {
		return fmt.Errorf("unlink %s from %s: %w", itemID, rel, ports.ErrAlreadyApplied)
	}
	members.Remove(itemID)
	return nil
}

func (s *Store) checkOwner(rel domain.Relation) error {
	if rel.Kind.OwnerType() == domain.RecordTypeUnknown {
		return fmt.Errorf("relation kind %s: %w", rel.Kind, ports.ErrInvalid)
	}
	if !s.hasItem(rel.Kind.OwnerType(), rel.OwnerID) {
		return fmt.Errorf("%s %s: %w", rel.Kind.OwnerType(), rel.OwnerID, ports.ErrNotFound)
	}
	return nil
}

func (s *Store) hasItem(t domain.RecordType, id string) bool {
	var ok bool
	switch t {
	case domain.RecordTypeFile:
		_, ok = s.files[id]
	case domain.RecordTypeSample:
		_, ok = s.samples[id]
	case domain.RecordTypeLabel:
		_, ok = s.labels[id]
	}
	return ok
}
