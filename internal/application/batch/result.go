package batch

import (
	"fmt"

	"seqtag/internal/domain"
)

// Op is the kind of a single mutation request
type Op int

const (
	OpAdd Op = iota
	OpRemove
)

func (o Op) String() string {
	if o == OpRemove {
		return "remove"
	}
	return "add"
}

// Request is one independent mutation
type Request[K comparable] struct {
	Op Op
	ID K
}

// Requests flattens a plan into mutation requests, adds first
func Requests[K comparable](plan domain.Plan[K]) []Request[K] {
	reqs := make([]Request[K], 0, plan.Len())
	for id := range plan.ToAdd {
		reqs = append(reqs, Request[K]{Op: OpAdd, ID: id})
	}
	for id := range plan.ToRemove {
		reqs = append(reqs, Request[K]{Op: OpRemove, ID: id})
	}
	return reqs
}

// Failure records why one request failed
type Failure[K comparable] struct {
	ID   K
	Op   Op
	Kind ErrorKind
	Err  error
}

// Error names the request and the collaborator error. Kind is left out:
// store errors already read as their kind.
func (f Failure[K]) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s %v: %s", f.Op, f.ID, f.Kind)
	}
	return fmt.Sprintf("%s %v: %v", f.Op, f.ID, f.Err)
}

func (f Failure[K]) Unwrap() error {
	return f.Err
}

// OpResult holds the outcomes for one operation kind
type OpResult[K comparable] struct {
	Succeeded []K
	Failed    []Failure[K]
}

// Result is the per-item outcome of a batch
type Result[K comparable] struct {
	Add     OpResult[K]
	Remove  OpResult[K]
	Settled bool
}

// HasFailures reports whether any request failed
func (r Result[K]) HasFailures() bool {
	return len(r.Add.Failed) > 0 || len(r.Remove.Failed) > 0
}

// Succeeded returns every successful ID, adds first
func (r Result[K]) Succeeded() []K {
	out := make([]K, 0, len(r.Add.Succeeded)+len(r.Remove.Succeeded))
	out = append(out, r.Add.Succeeded...)
	return append(out, r.Remove.Succeeded...)
}

// Failed returns every failure, adds first
func (r Result[K]) Failed() []Failure[K] {
	out := make([]Failure[K], 0, len(r.Add.Failed)+len(r.Remove.Failed))
	out = append(out, r.Add.Failed...)
	return append(out, r.Remove.Failed...)
}

// FailedIDs returns the IDs of every failed request
func (r Result[K]) FailedIDs() domain.Set[K] {
	ids := domain.NewSet[K]()
	for _, f := range r.Failed() {
		ids.Add(f.ID)
	}
	return ids
}

// Attempted returns the number of requests with a recorded outcome
func (r Result[K]) Attempted() int {
	return len(r.Add.Succeeded) + len(r.Add.Failed) + len(r.Remove.Succeeded) + len(r.Remove.Failed)
}

func (r *Result[K]) record(req Request[K], err error) {
	side := &r.Add
	if req.Op == OpRemove {
		side = &r.Remove
	}
	if err == nil {
		side.Succeeded = append(side.Succeeded, req.ID)
		return
	}
	side.Failed = append(side.Failed, Failure[K]{
		ID:   req.ID,
		Op:   req.Op,
		Kind: Classify(err),
		Err:  err,
	})
}
