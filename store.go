// Package store is a dual-mode in-process state container: a hierarchical,
// path-addressable tree store and a flat key-value store, both wrapped by an
// ordered, short-circuiting middleware pipeline and a change-notification
// bus. Every proposed write flows through the pipeline, which may transform
// or veto it; committed changes fan out to prefix subscribers. Reads and
// subscriptions never touch the pipeline.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-store/internal/merge"
	"github.com/goliatone/go-store/internal/pathtree"
)

// Tree is the path-addressable store. Instances are independent: each owns
// its root value, middleware chain and subscriber set, so scoped stores can
// coexist without shared state. Construct with New; there is no package
// level default instance.
//
// Tree is safe for concurrent use, but overlapping Set calls to the same
// path are not ordered or mutually excluded by default: each call captures
// prev at pipeline entry, and a slow stage can leave that value stale by
// commit time. WithSerializedWrites installs the per-path queue that closes
// this window.
type Tree struct {
	state    treeState
	pipeline *pipeline
	notifier *notifier
	reporter Reporter
	scope    Scope
	queue    *pathQueue
}

// New constructs an empty tree store. The zero tree has a nil root: every
// Get misses until the first write or Initialize.
func New(opts ...Option) *Tree {
	cfg := applyOptions(opts)

	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopReporter{}
	}

	t := &Tree{
		pipeline: newPipeline(cfg.tracing),
		notifier: newNotifier(),
		reporter: reporter,
		scope:    cfg.scope,
	}
	t.state.replace(cfg.root)
	t.pipeline.replace(cfg.middleware)
	if cfg.serialized {
		t.queue = newPathQueue()
	}
	return t
}

// Initialize replaces the root value and the middleware chain wholesale.
// This is the startup hook; calling it on a live store is a full reset, not
// a merge. Subscriptions survive but are not notified of the swap.
func (t *Tree) Initialize(root any, middleware ...Middleware) {
	t.state.replace(root)
	t.pipeline.replace(middleware)
}

// Get returns the value at path. The second return is false when any
// segment along the way is missing or a non-mapping node blocks the walk;
// missing intermediates are never created on read. Get never runs the
// pipeline and never fails. The empty path returns the whole root.
//
// Returned values share structure with the tree, but commits replace nodes
// copy-on-write rather than mutating them, so a value obtained from Get is
// a stable snapshot even while other goroutines write.
func (t *Tree) Get(path string) (any, bool) {
	return t.state.lookup(Split(path))
}

// Set proposes value at path. The middleware chain runs in order against
// (path, value, previous value); on veto or stage fault nothing mutates and
// no subscriber fires. On success the final candidate replaces the node at
// path, creating intermediate mappings as needed, and every subscription
// whose prefix covers path is notified. Setting the empty path replaces the
// entire root.
//
// Set never returns an error: rejections come back as Outcome.Committed ==
// false and are mirrored to the Reporter.
func (t *Tree) Set(ctx context.Context, path string, value any) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	norm := Normalize(path)

	if t.queue != nil {
		release := t.queue.acquire(norm)
		defer release()
	}

	segments := Split(norm)
	prev, _ := t.state.lookup(segments)

	start := time.Now()
	final, outcome := t.pipeline.run(ctx, t.scope.Name, norm, value, prev, t.reporter.Report)
	if !outcome.Committed {
		return outcome
	}

	t.state.assign(segments, final)

	t.reporter.Report(Event{
		Kind:     EventCommit,
		Store:    t.scope.Name,
		Path:     norm,
		Duration: time.Since(start),
	})
	t.notifier.publish(norm, t.Get)
	return outcome
}

// Subscribe registers fn for every committed change at or below path
// (segment-wise; the empty path matches everything). The callback receives
// the post-commit value at its own subscribed path. The returned closure
// removes exactly this registration and is safe to call more than once.
func (t *Tree) Subscribe(path string, fn Subscriber) func() {
	return t.notifier.subscribe(path, fn)
}

// Use appends a middleware stage and returns its registration ID.
func (t *Tree) Use(m Middleware, opts ...UseOption) string {
	return t.pipeline.use(m, opts)
}

// RemoveMiddleware deletes the stage registered under id, reporting whether
// anything was removed. A later write the stage would have vetoed then
// commits normally.
func (t *Tree) RemoveMiddleware(id string) bool {
	return t.pipeline.remove(id)
}

// ClearMiddleware drops every installed stage.
func (t *Tree) ClearMiddleware() {
	t.pipeline.clear()
}

// Middlewares lists the installed stages in execution order.
func (t *Tree) Middlewares() []MiddlewareInfo {
	return t.pipeline.list()
}

// Snapshot returns a deep copy of the current root, detached from the live
// tree. Intended for devtools and diffing; mutating the copy never leaks
// back into the store.
func (t *Tree) Snapshot() any {
	root, _ := t.state.lookup(nil)
	return merge.CloneAny(root)
}

// Scope returns the identity metadata the store was constructed with.
func (t *Tree) Scope() Scope {
	return t.scope.clone()
}

// treeState guards the root value. Commit happens under the write lock and
// fan-out afterwards, so a subscriber calling Get always observes the newly
// committed tree.
type treeState struct {
	mu   sync.RWMutex
	root any
}

func (s *treeState) lookup(segments []string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pathtree.Lookup(s.root, segments)
}

func (s *treeState) assign(segments []string, value any) {
	s.mu.Lock()
	s.root = pathtree.Assign(s.root, segments, value)
	s.mu.Unlock()
}

func (s *treeState) replace(root any) {
	s.mu.Lock()
	s.root = root
	s.mu.Unlock()
}
