package store

import "context"

// Result is the tagged outcome of a single middleware stage. The zero value
// means "leave the candidate unchanged", so a stage that has nothing to say
// can return Result{} (or Unchanged()) without risk of nilling the write.
type Result struct {
	kind   resultKind
	value  any
	reason string
}

type resultKind int

const (
	resultUnchanged resultKind = iota
	resultReplace
	resultVeto
)

// Replace substitutes value as the pipeline candidate for the stages that
// follow and, ultimately, for the commit.
func Replace(value any) Result {
	return Result{kind: resultReplace, value: value}
}

// Veto rejects the proposed write. No later stage runs, nothing is committed
// and no subscriber fires. The reason is surfaced through the Reporter, not
// returned as an error.
func Veto(reason string) Result {
	return Result{kind: resultVeto, reason: reason}
}

// Unchanged keeps the current candidate. Equivalent to the zero Result.
func Unchanged() Result {
	return Result{}
}

// Replaced returns the replacement value when the result carries one.
func (r Result) Replaced() (any, bool) {
	return r.value, r.kind == resultReplace
}

// Vetoed returns the veto reason when the result is a veto.
func (r Result) Vetoed() (string, bool) {
	return r.reason, r.kind == resultVeto
}

// Middleware inspects a proposed write before it commits. next is the
// candidate value (possibly already transformed by earlier stages), prev is
// the committed value at path at the time the write began (nil when the path
// was absent). A returned error is a stage fault: the pipeline treats it as
// a veto (fail-closed) and reports it, it is never propagated to the Set
// caller. Stages may block; ctx carries the caller's deadline.
type Middleware func(ctx context.Context, path string, next, prev any) (Result, error)

// FlatMiddleware is the flat-store stage shape: no path, the unit of change
// is the whole object. next is the candidate merged state, prev the state
// before the merge. Replace values must be of type T or the stage is treated
// as faulted.
type FlatMiddleware[T any] func(ctx context.Context, next, prev T) (Result, error)

// Outcome is what every Set call returns. The pipeline never surfaces
// errors across the Set boundary: a rejected write is Committed=false with
// the veto reason, a faulted stage additionally carries the fault.
type Outcome struct {
	Committed bool
	Reason    string
	Fault     error
	Trace     []StageTrace
}

// Change is delivered to tree-store subscribers after a commit. Value holds
// the current value at the subscriber's own registered path (looked up
// fresh, after the commit), not the raw value written at Path. Later
// commits replace nodes instead of mutating them, so Value stays stable
// after delivery.
type Change struct {
	// Path is the normalized path the commit landed on.
	Path string
	// Value is the post-commit value at the subscription's prefix.
	Value any
	// Found is false when the subscription's own prefix no longer resolves.
	Found bool
}

// Subscriber receives committed changes.
type Subscriber func(Change)

// MiddlewareInfo describes one installed pipeline stage for listing and
// devtools.
type MiddlewareInfo struct {
	ID   string
	Name string
}
