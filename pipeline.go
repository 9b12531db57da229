package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// UseOption configures a middleware registration.
type UseOption func(*middlewareEntry)

// WithStageName labels a stage for listing, tracing and reporter events.
func WithStageName(name string) UseOption {
	return func(entry *middlewareEntry) {
		entry.name = name
	}
}

type middlewareEntry struct {
	id   string
	name string
	fn   Middleware
}

// pipeline is the ordered middleware chain shared by both store modes (the
// flat store adapts its stages into the path-shaped Middleware signature).
// Stages run strictly in registration order, one at a time; a veto or fault
// short-circuits the remainder.
type pipeline struct {
	mu      sync.RWMutex
	entries []middlewareEntry
	tracing bool
}

func newPipeline(tracing bool) *pipeline {
	return &pipeline{tracing: tracing}
}

func (p *pipeline) use(fn Middleware, opts []UseOption) string {
	entry := middlewareEntry{id: uuid.NewString(), fn: fn}
	for _, opt := range opts {
		if opt != nil {
			opt(&entry)
		}
	}

	p.mu.Lock()
	p.entries = append(p.entries, entry)
	p.mu.Unlock()
	return entry.id
}

func (p *pipeline) remove(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, entry := range p.entries {
		if entry.id == id {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (p *pipeline) clear() {
	p.mu.Lock()
	p.entries = nil
	p.mu.Unlock()
}

func (p *pipeline) replace(fns []Middleware) {
	entries := make([]middlewareEntry, 0, len(fns))
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		entries = append(entries, middlewareEntry{id: uuid.NewString(), fn: fn})
	}
	p.mu.Lock()
	p.entries = entries
	p.mu.Unlock()
}

func (p *pipeline) list() []MiddlewareInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	infos := make([]MiddlewareInfo, len(p.entries))
	for i, entry := range p.entries {
		infos[i] = MiddlewareInfo{ID: entry.id, Name: entry.name}
	}
	return infos
}

// run applies every stage in order to the proposed value and returns the
// final candidate plus the outcome. Nothing run inside a stage escapes as an
// error or panic: deliberate vetoes and stage faults both surface through
// report and the returned Outcome, fail-closed.
func (p *pipeline) run(ctx context.Context, storeName, path string, proposed, prev any, report func(Event)) (any, Outcome) {
	p.mu.RLock()
	entries := make([]middlewareEntry, len(p.entries))
	copy(entries, p.entries)
	p.mu.RUnlock()

	candidate := proposed
	var trace []StageTrace
	if p.tracing {
		trace = make([]StageTrace, 0, len(entries))
	}

	for _, entry := range entries {
		start := time.Now()
		result, err := invokeStage(ctx, entry, path, candidate, prev)
		elapsed := time.Since(start)

		if err != nil {
			fault := wrapStageError(entry.name, path, err)
			if p.tracing {
				trace = append(trace, StageTrace{Stage: entry.name, Action: "fault", Reason: fault.Error(), Duration: elapsed})
			}
			report(Event{
				Kind:     EventStageFault,
				Store:    storeName,
				Path:     path,
				Stage:    entry.name,
				Duration: elapsed,
				Err:      fault,
			})
			return nil, Outcome{Reason: "stage fault", Fault: fault, Trace: trace}
		}

		if reason, vetoed := result.Vetoed(); vetoed {
			if p.tracing {
				trace = append(trace, StageTrace{Stage: entry.name, Action: "veto", Reason: reason, Duration: elapsed})
			}
			report(Event{
				Kind:     EventVeto,
				Store:    storeName,
				Path:     path,
				Stage:    entry.name,
				Reason:   reason,
				Duration: elapsed,
			})
			return nil, Outcome{Reason: reason, Trace: trace}
		}

		action := "unchanged"
		if value, replaced := result.Replaced(); replaced {
			candidate = value
			action = "replace"
		}
		if p.tracing {
			trace = append(trace, StageTrace{Stage: entry.name, Action: action, Duration: elapsed})
		}
	}

	return candidate, Outcome{Committed: true, Trace: trace}
}

// invokeStage isolates a single stage call, converting panics into stage
// faults so a misbehaving stage can never tear down the Set caller.
func invokeStage(ctx context.Context, entry middlewareEntry, path string, next, prev any) (result Result, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = Result{}
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return entry.fn(ctx, path, next, prev)
}
