// Package batch runs independent relation mutations with bounded concurrency
// and reports the outcome of every single request.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

// DefaultChunkSize matches the per-call batch ceiling of the record store
const DefaultChunkSize = 100

// Ops are the caller supplied mutations for one relation
type Ops[K comparable] struct {
	Add    func(ctx context.Context, id K) error
	Remove func(ctx context.Context, id K) error
}

type options struct {
	chunkSize int
	logger    *slog.Logger
}

// Option configures an Executor
type Option func(*options)

// WithChunkSize sets how many requests may be in flight at once.
// Values below 1 fall back to DefaultChunkSize.
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

// WithLogger sets the logger used for dispatch and failure records
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Executor issues mutation requests in chunks. Requests inside a chunk run
// concurrently; the next chunk starts once the previous one has settled.
type Executor[K comparable] struct {
	chunkSize int
	logger    *slog.Logger
}

// NewExecutor creates a new Executor
func NewExecutor[K comparable](opts ...Option) *Executor[K] {
	o := options{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.chunkSize < 1 {
		o.chunkSize = DefaultChunkSize
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return &Executor[K]{chunkSize: o.chunkSize, logger: o.logger}
}

// ChunkSize returns the configured chunk size
func (e *Executor[K]) ChunkSize() int {
	return e.chunkSize
}

// Execute runs plan and blocks until every request has settled
func (e *Executor[K]) Execute(ctx context.Context, plan domain.Plan[K], ops Ops[K]) Result[K] {
	return e.Start(ctx, plan, ops).Wait()
}

// Start dispatches plan in the background and returns a handle to it
func (e *Executor[K]) Start(ctx context.Context, plan domain.Plan[K], ops Ops[K]) *Batch[K] {
	return e.StartRequests(ctx, Requests(plan), ops)
}

// StartRequests dispatches reqs in the background and returns a handle to
// them. Once dispatched a batch cannot be cancelled: cancelling ctx does not
// reach the operations, which keep running until they settle.
func (e *Executor[K]) StartRequests(ctx context.Context, reqs []Request[K], ops Ops[K]) *Batch[K] {
	for _, req := range reqs {
		if req.Op == OpAdd && ops.Add == nil {
			panic("batch: request to add with nil Ops.Add")
		}
		if req.Op == OpRemove && ops.Remove == nil {
			panic("batch: request to remove with nil Ops.Remove")
		}
	}

	b := &Batch[K]{
		total: len(reqs),
		done:  make(chan struct{}),
	}

	if len(reqs) == 0 {
		b.result.Settled = true
		close(b.done)
		return b
	}

	go e.run(context.WithoutCancel(ctx), b, reqs, ops)
	return b
}

func (e *Executor[K]) run(ctx context.Context, b *Batch[K], reqs []Request[K], ops Ops[K]) {
	defer close(b.done)

	var mu sync.Mutex
	for start := 0; start < len(reqs); start += e.chunkSize {
		end := min(start+e.chunkSize, len(reqs))
		e.logger.DebugContext(ctx, "dispatching mutation chunk",
			"from", start, "to", end, "total", len(reqs))

		var g errgroup.Group
		for _, req := range reqs[start:end] {
			g.Go(func() error {
				err := e.apply(ctx, req, ops, b)

				mu.Lock()
				b.result.record(req, err)
				mu.Unlock()
				b.completed.Add(1)

				if err != nil {
					e.logger.WarnContext(ctx, "mutation failed",
						"op", req.Op.String(), "id", req.ID, "kind", Classify(err).String(), "error", err)
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	b.result.Settled = true
}

// apply runs one request. A no-op reported by the store counts as success.
func (e *Executor[K]) apply(ctx context.Context, req Request[K], ops Ops[K], b *Batch[K]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.panicOnce.Do(func() { b.panicVal = r })
			err = fmt.Errorf("panic during %s %v: %v", req.Op, req.ID, r)
		}
	}()

	if req.Op == OpRemove {
		err = ops.Remove(ctx, req.ID)
	} else {
		err = ops.Add(ctx, req.ID)
	}
	if errors.Is(err, ports.ErrAlreadyApplied) {
		return nil
	}
	return err
}

// Batch is a dispatched set of requests
type Batch[K comparable] struct {
	total     int
	completed atomic.Int64
	done      chan struct{}
	result    Result[K]

	panicOnce sync.Once
	panicVal  any
}

// Total returns the number of requests in the batch
func (b *Batch[K]) Total() int {
	return b.total
}

// Completed returns how many requests have settled so far
func (b *Batch[K]) Completed() int {
	return int(b.completed.Load())
}

// Pending reports whether any request is still in flight
func (b *Batch[K]) Pending() bool {
	select {
	case <-b.done:
		return false
	default:
		return true
	}
}

// Done is closed when every request has settled
func (b *Batch[K]) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until the batch settles and returns its result.
// If an operation panicked, the panic is raised again here, after every
// other request has settled.
func (b *Batch[K]) Wait() Result[K] {
	<-b.done
	if b.panicVal != nil {
		panic(b.panicVal)
	}
	return b.result
}
