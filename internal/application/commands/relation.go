package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"seqtag/internal/application"
	"seqtag/internal/application/batch"
	"seqtag/internal/application/session"
	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

// RelationMode says how the given IDs combine with the current membership
type RelationMode int

const (
	ModeSet    RelationMode = iota // membership becomes exactly the IDs
	ModeAdd                        // IDs are linked, others kept
	ModeRemove                     // IDs are unlinked, others kept
)

func (m RelationMode) String() string {
	switch m {
	case ModeSet:
		return "set"
	case ModeAdd:
		return "add"
	case ModeRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// ParseRelationMode parses "set", "add" or "remove"
func ParseRelationMode(s string) (RelationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "set", "":
		return ModeSet, nil
	case "add", "link":
		return ModeAdd, nil
	case "remove", "unlink":
		return ModeRemove, nil
	default:
		return ModeSet, &application.ValidationError{
			Field:   "mode",
			Message: fmt.Sprintf("unknown mode %q (want set, add or remove)", s),
		}
	}
}

// ShowRelationResult lists the items linked to an owner
type ShowRelationResult struct {
	Relation domain.Relation
	Items    []domain.Record
	Message  string
}

// ShowRelationCommand reads one relation
type ShowRelationCommand struct {
	store    ports.Store
	Relation domain.Relation
}

// NewShowRelationCommand creates a new ShowRelationCommand
func NewShowRelationCommand(store ports.Store, rel domain.Relation) *ShowRelationCommand {
	return &ShowRelationCommand{store: store, Relation: rel}
}

// Validate checks the relation
func (c *ShowRelationCommand) Validate() error {
	return application.ValidateRelation(c.Relation)
}

// Execute runs the show relation command
func (c *ShowRelationCommand) Execute(ctx context.Context) (*ShowRelationResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	ids, err := c.store.FetchCurrent(ctx, c.Relation)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.Relation, err)
	}
	candidates, err := c.store.ListRecords(ctx, c.Relation.Kind.ItemType())
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", c.Relation.Kind.ItemType(), err)
	}

	return &ShowRelationResult{
		Relation: c.Relation,
		Items:    linkedRecords(c.Relation.Kind.ItemType(), ids, candidates),
		Message:  fmt.Sprintf("%d %s(s) linked to %s %s", len(ids), c.Relation.Kind.ItemType(), c.Relation.Kind.OwnerType(), c.Relation.OwnerID),
	}, nil
}

// linkedRecords returns the records for ids in id order. IDs without a
// record are kept with an empty name.
func linkedRecords(t domain.RecordType, ids []string, candidates []domain.Record) []domain.Record {
	byID := make(map[string]domain.Record, len(candidates))
	for _, r := range candidates {
		byID[r.ID] = r
	}
	out := make([]domain.Record, 0, len(ids))
	for _, id := range domain.Sorted(domain.NewSet(ids...)) {
		rec, ok := byID[id]
		if !ok {
			rec = domain.Record{Type: t, ID: id}
		}
		out = append(out, rec)
	}
	return out
}

// SetRelationResult contains the result of reconciling a relation
type SetRelationResult struct {
	Relation domain.Relation
	Mode     RelationMode
	DryRun   bool
	Plan     domain.Plan[string]
	Result   batch.Result[string]
	Members  []string // membership after the change (predicted on dry run)
	Message  string
}

// HasFailures reports whether any link or unlink failed
func (r *SetRelationResult) HasFailures() bool {
	return r.Result.HasFailures()
}

// SetRelationCommand links and unlinks items so the relation matches IDs
// according to Mode
type SetRelationCommand struct {
	store    ports.Store
	exec     *batch.Executor[string]
	logger   *slog.Logger
	Relation domain.Relation
	Mode     RelationMode
	IDs      []string
	DryRun   bool
}

// NewSetRelationCommand creates a new SetRelationCommand. A nil executor
// uses the default chunk size.
func NewSetRelationCommand(store ports.Store, exec *batch.Executor[string], logger *slog.Logger, rel domain.Relation, mode RelationMode, ids []string) *SetRelationCommand {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SetRelationCommand{
		store:    store,
		exec:     exec,
		logger:   logger,
		Relation: rel,
		Mode:     mode,
		IDs:      ids,
	}
}

// Validate checks if the operation is valid
func (c *SetRelationCommand) Validate() error {
	if err := application.ValidateRelation(c.Relation); err != nil {
		return err
	}
	if err := application.ValidateRecordIDs("itemID", c.IDs); err != nil {
		return err
	}
	switch c.Mode {
	case ModeSet:
	case ModeAdd, ModeRemove:
		if len(c.IDs) == 0 {
			return &application.ValidationError{
				Field:   "itemID",
				Message: fmt.Sprintf("at least one item ID is required to %s", c.Mode),
			}
		}
	default:
		return fmt.Errorf("%w: mode %d", application.ErrInvalidOperation, c.Mode)
	}
	return nil
}

// Desired combines the current membership with IDs according to Mode
func (c *SetRelationCommand) Desired(current domain.Set[string]) domain.Set[string] {
	ids := domain.NewSet(c.IDs...)
	switch c.Mode {
	case ModeAdd:
		desired := current.Clone()
		for id := range ids {
			desired.Add(id)
		}
		return desired
	case ModeRemove:
		return current.Difference(ids)
	default:
		return ids
	}
}

// Execute runs the set relation command. Per-item failures are reported in
// the result, not as an error; callers check HasFailures.
func (c *SetRelationCommand) Execute(ctx context.Context) (*SetRelationResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	sess := session.New(c.store, c.Relation, c.exec, c.logger)
	current, err := sess.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	desired := c.Desired(current)

	res := &SetRelationResult{
		Relation: c.Relation,
		Mode:     c.Mode,
		DryRun:   c.DryRun,
		Plan:     domain.Diff(current, desired),
	}

	if c.DryRun {
		res.Result.Settled = true
		res.Members = domain.Sorted(res.Plan.Apply(current))
		res.Message = fmt.Sprintf("Dry run on %s: would link %d, unlink %d",
			c.Relation, res.Plan.ToAdd.Len(), res.Plan.ToRemove.Len())
		return res, nil
	}

	// Add and remove never touch items outside IDs, so a set computed from
	// an older read cannot undo someone else's links. Only ModeSet replaces
	// the whole membership and goes through a full commit.
	if c.Mode == ModeSet {
		outcome, err := sess.Commit(ctx, desired)
		if outcome != nil {
			res.Plan = outcome.Plan
			res.Result = outcome.Result
			res.Members = domain.Sorted(outcome.Snapshot)
		}
		if err != nil {
			return res, err
		}
	} else {
		exec := c.exec
		if exec == nil {
			exec = batch.NewExecutor[string](batch.WithLogger(c.logger))
		}
		res.Result = exec.Execute(ctx, res.Plan, batch.Ops[string]{
			Add: func(ctx context.Context, id string) error {
				return c.store.ApplyAdd(ctx, c.Relation, id)
			},
			Remove: func(ctx context.Context, id string) error {
				return c.store.ApplyRemove(ctx, c.Relation, id)
			},
		})
		if !res.Result.HasFailures() {
			after, err := sess.Refresh(ctx)
			if err != nil {
				return res, fmt.Errorf("re-read after commit: %w", err)
			}
			res.Members = domain.Sorted(after)
		}
	}

	res.Message = summarize(res)
	return res, nil
}

func summarize(res *SetRelationResult) string {
	if res.Plan.Empty() {
		return fmt.Sprintf("No changes to %s", res.Relation)
	}
	msg := fmt.Sprintf("Linked %d, unlinked %d on %s",
		len(res.Result.Add.Succeeded), len(res.Result.Remove.Succeeded), res.Relation)
	if n := len(res.Result.Failed()); n > 0 {
		msg += fmt.Sprintf(" (%d failed)", n)
	}
	return msg
}
