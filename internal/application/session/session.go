// Package session ties a selection, the relation diff and the batch
// executor together for editing one owner's relation.
//
// A Session is driven from two sides. The list owner (a TUI view or a CLI
// command) mutates the Selection and calls Reset and Settle on its own
// goroutine. Refresh and Commit talk to the store and may run anywhere; they
// never touch the Selection, so a commit in flight cannot race with the
// list that owns it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"seqtag/internal/application"
	"seqtag/internal/application/batch"
	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

// Outcome is what a settled commit produced
type Outcome struct {
	Plan   domain.Plan[string]
	Result batch.Result[string]

	// Snapshot is the membership re-read after a fully successful commit.
	// It is nil when the batch had failures.
	Snapshot domain.Set[string]
}

// Succeeded reports whether every operation of the commit went through
func (o *Outcome) Succeeded() bool {
	return !o.Result.HasFailures()
}

// Session edits one relation
type Session struct {
	store  ports.RelationStore
	rel    domain.Relation
	exec   *batch.Executor[string]
	logger *slog.Logger

	selection *domain.Selection[string]

	mu         sync.Mutex
	snapshot   domain.Set[string] // nil until fetched or after invalidation
	committing bool
	inflight   *batch.Batch[string]
}

// New creates a session for rel. A nil logger discards output.
func New(store ports.RelationStore, rel domain.Relation, exec *batch.Executor[string], logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if exec == nil {
		exec = batch.NewExecutor[string](batch.WithLogger(logger))
	}
	return &Session{
		store:     store,
		rel:       rel,
		exec:      exec,
		logger:    logger.With("relation", rel.String()),
		selection: domain.NewSelection[string](),
	}
}

// Relation returns the relation being edited
func (s *Session) Relation() domain.Relation {
	return s.rel
}

// Selection returns the desired membership as built by the user
func (s *Session) Selection() *domain.Selection[string] {
	return s.selection
}

// Snapshot returns the last fetched membership, if it is still valid
func (s *Session) Snapshot() (domain.Set[string], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return nil, false
	}
	return s.snapshot.Clone(), true
}

// Load fetches the relation and seeds the selection with it
func (s *Session) Load(ctx context.Context) error {
	snapshot, err := s.Refresh(ctx)
	if err != nil {
		return err
	}
	s.Reset(snapshot)
	return nil
}

// Refresh re-reads the relation from the store and caches the snapshot
func (s *Session) Refresh(ctx context.Context) (domain.Set[string], error) {
	current, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.snapshot = current
	s.mu.Unlock()
	return current.Clone(), nil
}

// Reset replaces the selection with snapshot and drops the anchor
func (s *Session) Reset(snapshot domain.Set[string]) {
	s.selection.Reset(domain.Sorted(snapshot)...)
}

// Changes diffs the cached snapshot against the current selection. It is
// a preview only; Commit always diffs against a fresh read.
func (s *Session) Changes() domain.Plan[string] {
	s.mu.Lock()
	current := s.snapshot
	s.mu.Unlock()
	if current == nil {
		current = domain.NewSet[string]()
	}
	return domain.Diff(current, s.selection.Selected())
}

// Pending reports whether a commit is running
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committing
}

// Progress returns how many operations of the running commit have settled
func (s *Session) Progress() (completed, total int) {
	s.mu.Lock()
	b := s.inflight
	s.mu.Unlock()
	if b == nil {
		return 0, 0
	}
	return b.Completed(), b.Total()
}

// Commit reconciles the relation with desired. It re-reads the relation
// instead of trusting the cached snapshot, executes the minimal plan and
// waits for every operation to settle. On full success the relation is
// read again and returned in Outcome.Snapshot. A second Commit while one is
// running returns ErrCommitPending.
//
// Per-item failures are reported in Outcome.Result, not as an error. The
// error return is reserved for reads that fail or return malformed data.
func (s *Session) Commit(ctx context.Context, desired domain.Set[string]) (*Outcome, error) {
	s.mu.Lock()
	if s.committing {
		s.mu.Unlock()
		return nil, application.ErrCommitPending
	}
	s.committing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.committing = false
		s.inflight = nil
		s.mu.Unlock()
	}()

	current, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	plan := domain.Diff(current, desired)
	s.logger.InfoContext(ctx, "committing relation",
		"add", plan.ToAdd.Len(), "remove", plan.ToRemove.Len())

	b := s.exec.Start(ctx, plan, batch.Ops[string]{
		Add: func(ctx context.Context, id string) error {
			return s.store.ApplyAdd(ctx, s.rel, id)
		},
		Remove: func(ctx context.Context, id string) error {
			return s.store.ApplyRemove(ctx, s.rel, id)
		},
	})
	s.mu.Lock()
	s.inflight = b
	s.mu.Unlock()

	result := b.Wait()

	// Whatever happened, the cached snapshot no longer reflects the store
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()

	outcome := &Outcome{Plan: plan, Result: result}
	if result.HasFailures() {
		s.logger.WarnContext(ctx, "commit settled with failures",
			"failed", len(result.Failed()), "succeeded", len(result.Succeeded()))
		return outcome, nil
	}

	fresh, err := s.Refresh(ctx)
	if err != nil {
		return outcome, fmt.Errorf("re-read after commit: %w", err)
	}
	outcome.Snapshot = fresh
	s.logger.InfoContext(ctx, "commit settled", "members", fresh.Len())
	return outcome, nil
}

// Settle applies a commit outcome to the selection. After full success the
// selection is replaced by the re-read membership and Settle returns true;
// after failures the selection is left as the user built it.
func (s *Session) Settle(o *Outcome) bool {
	if o == nil || !o.Succeeded() || o.Snapshot == nil {
		return false
	}
	s.Reset(o.Snapshot)
	return true
}

func (s *Session) fetch(ctx context.Context) (domain.Set[string], error) {
	ids, err := s.store.FetchCurrent(ctx, s.rel)
	if err != nil {
		return nil, &application.RelationError{
			Relation: s.rel.String(),
			Reason:   "fetch failed",
			Err:      err,
		}
	}
	for _, id := range ids {
		if id == "" {
			return nil, &application.RelationError{
				Relation: s.rel.String(),
				Reason:   "store returned an empty item ID",
				Err:      application.ErrMalformedSnapshot,
			}
		}
	}
	return domain.NewSet(ids...), nil
}
