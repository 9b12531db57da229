package store

import (
	"context"
	"sync"
	"time"
)

// Transform adapts a plain mapping function into a middleware stage. The
// returned value replaces the candidate; returning next unchanged is a
// pass-through.
func Transform(fn func(path string, next, prev any) any) Middleware {
	return func(_ context.Context, path string, next, prev any) (Result, error) {
		return Replace(fn(path, next, prev)), nil
	}
}

// Tap runs a side effect for every proposed value and passes the candidate
// through untouched. Use persist.WriteThrough instead when the effect can
// fail and the failure should be reported.
func Tap(fn func(ctx context.Context, path string, next any)) Middleware {
	return func(ctx context.Context, path string, next, _ any) (Result, error) {
		fn(ctx, path, next)
		return Unchanged(), nil
	}
}

// Debounce holds each write for window before letting it commit. When a
// newer write to the same path arrives inside the window the held write is
// superseded and ends vetoed, so N rapid calls to one path produce exactly
// one commit carrying the last proposed value. Distinct paths debounce
// independently.
//
// The stage blocks the calling Set for up to window; ctx cancellation
// surfaces as a stage fault. Do not install on a store using
// WithSerializedWrites: a queued write cannot supersede the one holding the
// path.
func Debounce(window time.Duration) Middleware {
	var mu sync.Mutex
	generations := map[string]uint64{}

	return func(ctx context.Context, path string, _, _ any) (Result, error) {
		mu.Lock()
		generations[path]++
		mine := generations[path]
		mu.Unlock()

		timer := time.NewTimer(window)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timer.C:
		}

		mu.Lock()
		latest := generations[path]
		if latest == mine {
			delete(generations, path)
		}
		mu.Unlock()

		if latest != mine {
			return Veto("superseded by newer write"), nil
		}
		return Unchanged(), nil
	}
}

// RateLimit holds each path to at most one effective update per interval.
// A write arriving early still commits, but resolves to the previous value
// instead of the proposed one, so downstream state and subscribers see no
// churn faster than the configured rate.
//
// The limiter counts writes that reach it, not final commits: a write a
// later stage vetoes still consumes the path's slot for the interval.
// Install RateLimit after validators so rejected writes never reach it.
func RateLimit(interval time.Duration) Middleware {
	var mu sync.Mutex
	last := map[string]time.Time{}

	return func(_ context.Context, path string, _, prev any) (Result, error) {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		if stamp, ok := last[path]; ok && now.Sub(stamp) < interval {
			return Replace(prev), nil
		}

		if len(last) > 1024 {
			for p, stamp := range last {
				if now.Sub(stamp) >= interval {
					delete(last, p)
				}
			}
		}
		last[path] = now
		return Unchanged(), nil
	}
}
