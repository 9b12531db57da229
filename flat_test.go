package store

import (
	"context"
	"testing"
)

type prefs struct {
	Theme    string
	FontSize int
	Sidebar  bool
}

func TestFlatShallowMerge(t *testing.T) {
	flat := NewFlat(prefs{Theme: "light", FontSize: 14})
	ctx := context.Background()

	flat.Set(ctx, prefs{Theme: "dark"})

	got := flat.Get()
	if got.Theme != "dark" || got.FontSize != 14 {
		t.Fatalf("state = %+v", got)
	}
}

func TestFlatMapMerge(t *testing.T) {
	flat := NewFlat(map[string]any{"a": 1, "b": 2})
	ctx := context.Background()

	flat.Set(ctx, map[string]any{"b": 20, "c": 3})

	got := flat.Get()
	if got["a"] != 1 || got["b"] != 20 || got["c"] != 3 {
		t.Fatalf("state = %v", got)
	}
}

func TestFlatVetoDiscardsWholeMerge(t *testing.T) {
	flat := NewFlat(prefs{Theme: "light", FontSize: 14})
	ctx := context.Background()

	flat.Use(func(_ context.Context, next, _ prefs) (Result, error) {
		if next.FontSize > 72 {
			return Veto("too large"), nil
		}
		return Unchanged(), nil
	})

	var fired int
	flat.Subscribe(func(prefs) { fired++ })

	outcome := flat.Set(ctx, prefs{Theme: "dark", FontSize: 200})
	if outcome.Committed {
		t.Fatalf("vetoed merge committed")
	}

	got := flat.Get()
	// All-or-nothing: the theme change is discarded along with the bad size.
	if got.Theme != "light" || got.FontSize != 14 {
		t.Fatalf("partial merge applied: %+v", got)
	}
	if fired != 0 {
		t.Fatalf("subscriber fired on vetoed merge")
	}
}

func TestFlatMiddlewareCanReplaceMergedState(t *testing.T) {
	flat := NewFlat(prefs{FontSize: 14})
	ctx := context.Background()

	flat.Use(func(_ context.Context, next, _ prefs) (Result, error) {
		if next.FontSize < 8 {
			next.FontSize = 8
			return Replace(next), nil
		}
		return Unchanged(), nil
	})

	flat.Set(ctx, prefs{FontSize: 2})
	if got := flat.Get(); got.FontSize != 8 {
		t.Fatalf("state = %+v", got)
	}
}

func TestFlatSubscribersFireOnEveryCommit(t *testing.T) {
	flat := NewFlat(prefs{})
	ctx := context.Background()

	var states []prefs
	unsubscribe := flat.Subscribe(func(state prefs) { states = append(states, state) })

	flat.Set(ctx, prefs{Theme: "dark"})
	flat.Set(ctx, prefs{FontSize: 12})

	if len(states) != 2 {
		t.Fatalf("states = %+v", states)
	}
	if states[1].Theme != "dark" || states[1].FontSize != 12 {
		t.Fatalf("final state = %+v", states[1])
	}

	unsubscribe()
	unsubscribe()
	flat.Set(ctx, prefs{Sidebar: true})
	if len(states) != 2 {
		t.Fatalf("fired after unsubscribe")
	}
}

func TestFlatCompactsUnsubscribedTombstones(t *testing.T) {
	flat := NewFlat(prefs{})
	unsubs := make([]func(), 0, 100)
	for i := 0; i < 100; i++ {
		unsubs = append(unsubs, flat.Subscribe(func(prefs) {}))
	}
	for _, unsubscribe := range unsubs[:99] {
		unsubscribe()
	}

	if len(flat.subs) != 1 {
		t.Fatalf("live subscriptions = %d", len(flat.subs))
	}
	if len(flat.order) > 2*len(flat.subs)+1 {
		t.Fatalf("order slice not compacted: %d entries", len(flat.order))
	}
}

func TestFlatReplaceTypeMismatchIsAFault(t *testing.T) {
	var events []Event
	flat := NewFlat(prefs{}, WithReporter(ReporterFunc(func(e Event) { events = append(events, e) })))
	ctx := context.Background()

	flat.Use(func(_ context.Context, _, _ prefs) (Result, error) {
		return Replace("not a prefs"), nil
	})

	outcome := flat.Set(ctx, prefs{Theme: "dark"})
	if outcome.Committed {
		t.Fatalf("mismatched replacement committed")
	}
	if outcome.Fault == nil {
		t.Fatalf("missing fault")
	}
	if got := flat.Get(); got.Theme != "" {
		t.Fatalf("state mutated: %+v", got)
	}
}

func TestFlatStoresAreIsolated(t *testing.T) {
	a := NewFlat(map[string]any{})
	b := NewFlat(map[string]any{})
	ctx := context.Background()

	var bFired int
	b.Subscribe(func(map[string]any) { bFired++ })

	a.Set(ctx, map[string]any{"k": 1})

	if len(b.Get()) != 0 {
		t.Fatalf("b observed a's write")
	}
	if bFired != 0 {
		t.Fatalf("b subscriber fired for a's write")
	}
}
