package batch_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seqtag/internal/application/batch"
	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

// recordingOps counts calls per id and fails the ids in failAdd/failRemove
type recordingOps struct {
	mu         sync.Mutex
	calls      map[string]int
	failAdd    map[string]error
	failRemove map[string]error

	inFlight    atomic.Int64
	maxInFlight atomic.Int64
	delay       time.Duration
}

func newRecordingOps() *recordingOps {
	return &recordingOps{
		calls:      map[string]int{},
		failAdd:    map[string]error{},
		failRemove: map[string]error{},
	}
}

func (r *recordingOps) do(id string, fail map[string]error) error {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		m := r.maxInFlight.Load()
		if n <= m || r.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[id]++
	return fail[id]
}

func (r *recordingOps) ops() batch.Ops[string] {
	return batch.Ops[string]{
		Add:    func(_ context.Context, id string) error { return r.do(id, r.failAdd) },
		Remove: func(_ context.Context, id string) error { return r.do(id, r.failRemove) },
	}
}

func TestExecutor_PartialFailure(t *testing.T) {
	rec := newRecordingOps()
	rec.failAdd["b"] = fmt.Errorf("link b: %w", ports.ErrNotFound)

	plan := domain.Diff(
		domain.NewSet("x", "y", "keep"),
		domain.NewSet("a", "b", "c", "keep"),
	)
	require.Equal(t, 3, plan.ToAdd.Len())
	require.Equal(t, 2, plan.ToRemove.Len())

	result := batch.NewExecutor[string]().Execute(context.Background(), plan, rec.ops())

	assert.True(t, result.Settled)
	assert.True(t, result.HasFailures())
	assert.ElementsMatch(t, []string{"a", "c", "x", "y"}, result.Succeeded())
	assert.ElementsMatch(t, []string{"a", "c"}, result.Add.Succeeded)
	assert.ElementsMatch(t, []string{"x", "y"}, result.Remove.Succeeded)

	failed := result.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].ID)
	assert.Equal(t, batch.OpAdd, failed[0].Op)
	assert.Equal(t, batch.KindNotFound, failed[0].Kind)
	assert.ErrorIs(t, failed[0], ports.ErrNotFound)
	assert.True(t, domain.NewSet("b").Equal(result.FailedIDs()))
}

func TestExecutor_EveryRequestAttemptedOnce(t *testing.T) {
	for _, chunkSize := range []int{1, 3, 7, 100, 1000} {
		t.Run(fmt.Sprintf("chunk=%d", chunkSize), func(t *testing.T) {
			rec := newRecordingOps()
			desired := domain.NewSet[string]()
			current := domain.NewSet[string]()
			for i := range 250 {
				id := fmt.Sprintf("f%03d", i)
				if i%2 == 0 {
					desired.Add(id)
				} else {
					current.Add(id)
				}
				if i%17 == 0 {
					rec.failAdd[id] = ports.ErrConflict
					rec.failRemove[id] = ports.ErrUnavailable
				}
			}
			plan := domain.Diff(current, desired)

			exec := batch.NewExecutor[string](batch.WithChunkSize(chunkSize))
			result := exec.Execute(context.Background(), plan, rec.ops())

			assert.Equal(t, plan.Len(), result.Attempted())
			seen := domain.NewSet[string]()
			for _, id := range result.Succeeded() {
				assert.False(t, seen.Has(id), "duplicate outcome for %s", id)
				seen.Add(id)
			}
			for _, f := range result.Failed() {
				assert.False(t, seen.Has(f.ID), "duplicate outcome for %s", f.ID)
				seen.Add(f.ID)
			}
			assert.Equal(t, plan.Len(), seen.Len())
			for id, n := range rec.calls {
				assert.Equal(t, 1, n, "id %s called %d times", id, n)
			}
			assert.Len(t, rec.calls, plan.Len())
		})
	}
}

func TestExecutor_ChunkBoundsConcurrency(t *testing.T) {
	rec := newRecordingOps()
	rec.delay = 5 * time.Millisecond

	ids := make([]string, 40)
	for i := range ids {
		ids[i] = fmt.Sprintf("id%02d", i)
	}
	plan := domain.Diff(domain.NewSet[string](), domain.NewSet(ids...))

	exec := batch.NewExecutor[string](batch.WithChunkSize(4))
	result := exec.Execute(context.Background(), plan, rec.ops())

	assert.False(t, result.HasFailures())
	assert.LessOrEqual(t, rec.maxInFlight.Load(), int64(4))
}

func TestExecutor_EmptyPlanIssuesNoCalls(t *testing.T) {
	rec := newRecordingOps()
	plan := domain.Diff(domain.NewSet("a"), domain.NewSet("a"))

	b := batch.NewExecutor[string]().Start(context.Background(), plan, rec.ops())

	assert.False(t, b.Pending())
	assert.Equal(t, 0, b.Total())
	result := b.Wait()
	assert.True(t, result.Settled)
	assert.False(t, result.HasFailures())
	assert.Empty(t, rec.calls)
}

func TestExecutor_AlreadyAppliedIsSuccess(t *testing.T) {
	rec := newRecordingOps()
	rec.failAdd["a"] = fmt.Errorf("link a: %w", ports.ErrAlreadyApplied)
	rec.failRemove["z"] = ports.ErrAlreadyApplied

	plan := domain.Diff(domain.NewSet("z"), domain.NewSet("a"))
	result := batch.NewExecutor[string]().Execute(context.Background(), plan, rec.ops())

	assert.False(t, result.HasFailures())
	assert.ElementsMatch(t, []string{"a", "z"}, result.Succeeded())
}

func TestExecutor_PendingUntilSettled(t *testing.T) {
	release := make(chan struct{})
	ops := batch.Ops[string]{
		Add: func(_ context.Context, _ string) error {
			<-release
			return nil
		},
		Remove: func(_ context.Context, _ string) error { return nil },
	}

	plan := domain.Diff(domain.NewSet("r"), domain.NewSet("a", "b"))
	b := batch.NewExecutor[string]().Start(context.Background(), plan, ops)

	assert.True(t, b.Pending())
	assert.Equal(t, 3, b.Total())
	assert.Eventually(t, func() bool { return b.Completed() == 1 }, time.Second, time.Millisecond)

	close(release)
	<-b.Done()
	assert.False(t, b.Pending())
	assert.Equal(t, 3, b.Completed())
	assert.True(t, b.Wait().Settled)
}

func TestExecutor_CancelledContextDoesNotAbortBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	ops := batch.Ops[string]{
		Add: func(ctx context.Context, _ string) error {
			once.Do(func() { close(started) })
			<-release
			return ctx.Err()
		},
		Remove: func(context.Context, string) error { return nil },
	}

	plan := domain.Diff(domain.NewSet[string](), domain.NewSet("a", "b"))
	b := batch.NewExecutor[string]().Start(ctx, plan, ops)

	<-started
	cancel()
	close(release)

	result := b.Wait()
	assert.False(t, result.HasFailures())
	assert.Len(t, result.Succeeded(), 2)
}

func TestExecutor_PanicSurfacesAfterSettle(t *testing.T) {
	var calls atomic.Int64
	ops := batch.Ops[string]{
		Add: func(_ context.Context, id string) error {
			calls.Add(1)
			if id == "bad" {
				panic("malformed response")
			}
			return nil
		},
		Remove: func(context.Context, string) error { return nil },
	}

	plan := domain.Diff(domain.NewSet[string](), domain.NewSet("a", "bad", "c"))
	b := batch.NewExecutor[string](batch.WithChunkSize(1)).Start(context.Background(), plan, ops)

	assert.PanicsWithValue(t, "malformed response", func() { b.Wait() })
	assert.Equal(t, int64(3), calls.Load())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want batch.ErrorKind
	}{
		{"not found", fmt.Errorf("x: %w", ports.ErrNotFound), batch.KindNotFound},
		{"conflict", ports.ErrConflict, batch.KindConflict},
		{"invalid", ports.ErrInvalid, batch.KindValidation},
		{"unavailable", ports.ErrUnavailable, batch.KindUnavailable},
		{"deadline", context.DeadlineExceeded, batch.KindUnavailable},
		{"other", errors.New("boom"), batch.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, batch.Classify(tt.err))
		})
	}
}

func TestFailure_Error(t *testing.T) {
	tests := []struct {
		name string
		f    batch.Failure[string]
		want string
	}{
		{
			name: "store error names its kind",
			f:    batch.Failure[string]{ID: "f3", Op: batch.OpAdd, Kind: batch.KindConflict, Err: ports.ErrConflict},
			want: "add f3: conflict",
		},
		{
			name: "wrapped store error",
			f: batch.Failure[string]{ID: "f9", Op: batch.OpRemove, Kind: batch.KindNotFound,
				Err: fmt.Errorf("file f9: %w", ports.ErrNotFound)},
			want: "remove f9: file f9: not found",
		},
		{
			name: "no underlying error",
			f:    batch.Failure[string]{ID: "x", Op: batch.OpAdd, Kind: batch.KindUnknown},
			want: "add x: unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.Error())
		})
	}
}
