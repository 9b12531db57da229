package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-store/internal/merge"
)

// Flat is the single-object store mode: one flat value of type T, written by
// shallow-merging a partial onto the current state. Middleware here receives
// the candidate merged state and the previous state, no path; a veto
// discards the whole merge, never part of it. Subscribers fire on every
// committed change, unconditionally.
type Flat[T any] struct {
	mu    sync.RWMutex
	state T

	pipeline *pipeline
	reporter Reporter
	scope    Scope

	subMu sync.RWMutex
	subs  map[string]func(T)
	order []string
}

// NewFlat constructs an independent flat store seeded with initial.
func NewFlat[T any](initial T, opts ...Option) *Flat[T] {
	cfg := applyOptions(opts)

	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopReporter{}
	}

	return &Flat[T]{
		state:    initial,
		pipeline: newPipeline(cfg.tracing),
		reporter: reporter,
		scope:    cfg.scope,
		subs:     map[string]func(T){},
	}
}

// Get returns the current state.
func (f *Flat[T]) Get() T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Set shallow-merges partial onto the current state and proposes the merged
// result to the middleware chain. Only when every stage approves does the
// merge commit; on veto the previous state stays untouched and nothing
// fires. Like the tree store, Set never returns an error.
func (f *Flat[T]) Set(ctx context.Context, partial T) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}

	prev := f.Get()
	candidate := merge.Shallow(prev, partial)

	start := time.Now()
	final, outcome := f.pipeline.run(ctx, f.scope.Name, "", candidate, prev, f.reporter.Report)
	if !outcome.Committed {
		return outcome
	}

	committed, ok := final.(T)
	if !ok {
		fault := wrapStageError("", "", fmt.Errorf("replacement value %T does not match state type", final))
		f.reporter.Report(Event{Kind: EventStageFault, Store: f.scope.Name, Err: fault})
		return Outcome{Reason: "stage fault", Fault: fault, Trace: outcome.Trace}
	}

	f.mu.Lock()
	f.state = committed
	f.mu.Unlock()

	f.reporter.Report(Event{
		Kind:     EventCommit,
		Store:    f.scope.Name,
		Duration: time.Since(start),
	})
	f.notify(committed)
	return outcome
}

// Subscribe registers fn for every committed change. The returned closure
// removes the registration and is idempotent.
func (f *Flat[T]) Subscribe(fn func(T)) func() {
	id := uuid.NewString()
	f.subMu.Lock()
	f.subs[id] = fn
	f.order = append(f.order, id)
	f.subMu.Unlock()

	return func() {
		f.subMu.Lock()
		delete(f.subs, id)
		if len(f.order) > 2*len(f.subs) {
			f.compactSubs()
		}
		f.subMu.Unlock()
	}
}

// compactSubs drops tombstoned ids from the ordering slice. Caller holds
// subMu.
func (f *Flat[T]) compactSubs() {
	live := f.order[:0]
	for _, id := range f.order {
		if _, ok := f.subs[id]; ok {
			live = append(live, id)
		}
	}
	f.order = live
}

// Use appends a middleware stage and returns its registration ID.
func (f *Flat[T]) Use(m FlatMiddleware[T], opts ...UseOption) string {
	return f.pipeline.use(adaptFlat(m), opts)
}

// RemoveMiddleware deletes the stage registered under id.
func (f *Flat[T]) RemoveMiddleware(id string) bool {
	return f.pipeline.remove(id)
}

// ClearMiddleware drops every installed stage.
func (f *Flat[T]) ClearMiddleware() {
	f.pipeline.clear()
}

// Middlewares lists the installed stages in execution order.
func (f *Flat[T]) Middlewares() []MiddlewareInfo {
	return f.pipeline.list()
}

// Scope returns the identity metadata the store was constructed with.
func (f *Flat[T]) Scope() Scope {
	return f.scope.clone()
}

func (f *Flat[T]) notify(state T) {
	f.subMu.RLock()
	matched := make([]func(T), 0, len(f.subs))
	for _, id := range f.order {
		if fn, ok := f.subs[id]; ok && fn != nil {
			matched = append(matched, fn)
		}
	}
	f.subMu.RUnlock()

	for _, fn := range matched {
		fn(state)
	}
}

// adaptFlat lifts a typed flat stage into the shared pipeline shape. A next
// or prev that is not a T marks the stage faulted rather than silently
// passing zero values through.
func adaptFlat[T any](m FlatMiddleware[T]) Middleware {
	return func(ctx context.Context, _ string, next, prev any) (Result, error) {
		nextState, ok := next.(T)
		if !ok {
			return Result{}, fmt.Errorf("candidate value %T does not match state type", next)
		}
		prevState, ok := prev.(T)
		if !ok {
			return Result{}, fmt.Errorf("previous value %T does not match state type", prev)
		}
		return m(ctx, nextState, prevState)
	}
}
