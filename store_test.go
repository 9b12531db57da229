package store

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
)

func TestSetGetRoundTrip(t *testing.T) {
	tree := New()
	ctx := context.Background()

	cases := []struct {
		path  string
		value any
	}{
		{"name", "ada"},
		{"user/age", 37},
		{"deep/a/b/c", []any{1, 2, 3}},
		{"flag", true},
	}
	for _, tc := range cases {
		if outcome := tree.Set(ctx, tc.path, tc.value); !outcome.Committed {
			t.Fatalf("Set(%q) rejected: %s", tc.path, outcome.Reason)
		}
		got, ok := tree.Get(tc.path)
		if !ok {
			t.Fatalf("Get(%q) missed after Set", tc.path)
		}
		if !reflect.DeepEqual(got, tc.value) {
			t.Fatalf("Get(%q) = %v, want %v", tc.path, got, tc.value)
		}
	}
}

func TestGetAbsentNeverFails(t *testing.T) {
	tree := New()
	for _, path := range []string{"", "missing", "a/b/c", "///x"} {
		if _, ok := tree.Get(path); ok && path != "" {
			t.Fatalf("Get(%q) = present on empty store", path)
		}
	}

	// A scalar blocks descent; the walk reports absent rather than failing.
	tree.Set(context.Background(), "user", 42)
	if _, ok := tree.Get("user/name"); ok {
		t.Fatalf("Get through scalar should miss")
	}
}

func TestSetCreatesIntermediateMappingsOnWriteOnly(t *testing.T) {
	tree := New()
	ctx := context.Background()

	// A read does not create the missing segments.
	tree.Get("a/b/c")
	if _, ok := tree.Get("a"); ok {
		t.Fatalf("read created intermediate node")
	}

	tree.Set(ctx, "a/b/c", 1)
	mid, ok := tree.Get("a/b")
	if !ok {
		t.Fatalf("intermediate mapping missing after write")
	}
	if !reflect.DeepEqual(mid, map[string]any{"c": 1}) {
		t.Fatalf("intermediate = %v", mid)
	}
}

func TestSetEmptyPathReplacesRoot(t *testing.T) {
	tree := New(WithInitialTree(map[string]any{"old": true}))
	ctx := context.Background()

	tree.Set(ctx, "", map[string]any{"fresh": 1})
	if _, ok := tree.Get("old"); ok {
		t.Fatalf("old root survived root replacement")
	}
	if got, _ := tree.Get("fresh"); got != 1 {
		t.Fatalf("fresh = %v", got)
	}
}

func TestPathNormalizationSharedByGetAndSet(t *testing.T) {
	tree := New()
	tree.Set(context.Background(), "//user//name/", "ada")
	if got, ok := tree.Get("user/name"); !ok || got != "ada" {
		t.Fatalf("normalized read missed: %v %v", got, ok)
	}
	if got, ok := tree.Get("/user/name//"); !ok || got != "ada" {
		t.Fatalf("denormalized read missed: %v %v", got, ok)
	}
}

func TestVetoLeavesStateAndSubscribersUntouched(t *testing.T) {
	tree := New()
	ctx := context.Background()
	tree.Set(ctx, "user/name", "ada")

	tree.Use(func(_ context.Context, _ string, _, _ any) (Result, error) {
		return Veto("nope"), nil
	})

	var fired int
	defer tree.Subscribe("", func(Change) { fired++ })()
	defer tree.Subscribe("user", func(Change) { fired++ })()

	outcome := tree.Set(ctx, "user/name", "grace")
	if outcome.Committed {
		t.Fatalf("vetoed write committed")
	}
	if outcome.Reason != "nope" {
		t.Fatalf("reason = %q", outcome.Reason)
	}
	if got, _ := tree.Get("user/name"); got != "ada" {
		t.Fatalf("state mutated by vetoed write: %v", got)
	}
	if fired != 0 {
		t.Fatalf("subscribers fired %d times on vetoed write", fired)
	}
}

func TestSubscriberSeesCommittedTreeAtOwnPath(t *testing.T) {
	tree := New()
	ctx := context.Background()

	var fired int
	var observed any
	tree.Subscribe("a", func(change Change) {
		fired++
		observed = change.Value
		// The store must already reflect the commit during fan-out.
		if got, ok := tree.Get("a/b/c"); !ok || got != 1 {
			t.Errorf("Get inside callback = %v %v", got, ok)
		}
		if change.Path != "a/b/c" {
			t.Errorf("change path = %q", change.Path)
		}
	})

	tree.Set(ctx, "a/b/c", 1)

	if fired != 1 {
		t.Fatalf("subscriber fired %d times, want 1", fired)
	}
	want := map[string]any{"b": map[string]any{"c": 1}}
	if !reflect.DeepEqual(observed, want) {
		t.Fatalf("observed = %v, want %v", observed, want)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	tree := New()
	var fired int
	unsubscribe := tree.Subscribe("", func(Change) { fired++ })

	unsubscribe()
	unsubscribe()

	tree.Set(context.Background(), "x", 1)
	if fired != 0 {
		t.Fatalf("fired after unsubscribe: %d", fired)
	}
}

func TestRemoveMiddlewareUnblocksWrite(t *testing.T) {
	tree := New()
	ctx := context.Background()

	id := tree.Use(func(_ context.Context, _ string, _, _ any) (Result, error) {
		return Veto("blocked"), nil
	}, WithStageName("blocker"))

	if outcome := tree.Set(ctx, "x", 1); outcome.Committed {
		t.Fatalf("expected veto")
	}
	if !tree.RemoveMiddleware(id) {
		t.Fatalf("remove reported false")
	}
	if tree.RemoveMiddleware(id) {
		t.Fatalf("second remove reported true")
	}
	if outcome := tree.Set(ctx, "x", 1); !outcome.Committed {
		t.Fatalf("write still blocked after removal: %s", outcome.Reason)
	}
}

func TestMiddlewareListingAndClear(t *testing.T) {
	tree := New()
	tree.Use(func(_ context.Context, _ string, _, _ any) (Result, error) {
		return Unchanged(), nil
	}, WithStageName("first"))
	tree.Use(func(_ context.Context, _ string, _, _ any) (Result, error) {
		return Unchanged(), nil
	}, WithStageName("second"))

	infos := tree.Middlewares()
	if len(infos) != 2 || infos[0].Name != "first" || infos[1].Name != "second" {
		t.Fatalf("infos = %+v", infos)
	}
	if infos[0].ID == "" || infos[0].ID == infos[1].ID {
		t.Fatalf("ids not unique: %+v", infos)
	}

	tree.ClearMiddleware()
	if got := tree.Middlewares(); len(got) != 0 {
		t.Fatalf("middlewares after clear: %+v", got)
	}
}

func TestInitializeIsAFullReset(t *testing.T) {
	tree := New()
	ctx := context.Background()
	tree.Set(ctx, "old", 1)
	tree.Use(func(_ context.Context, _ string, _, _ any) (Result, error) {
		return Veto("old pipeline"), nil
	})

	tree.Initialize(map[string]any{"seed": true}, func(_ context.Context, _ string, next, _ any) (Result, error) {
		return Unchanged(), nil
	})

	if _, ok := tree.Get("old"); ok {
		t.Fatalf("old state survived Initialize")
	}
	if got, _ := tree.Get("seed"); got != true {
		t.Fatalf("seed = %v", got)
	}
	if outcome := tree.Set(ctx, "x", 1); !outcome.Committed {
		t.Fatalf("old pipeline still active: %s", outcome.Reason)
	}
	if len(tree.Middlewares()) != 1 {
		t.Fatalf("middleware list = %+v", tree.Middlewares())
	}
}

func TestScopedStoresAreIsolated(t *testing.T) {
	a := New(WithScope(NewScope("a")))
	b := New(WithScope(NewScope("b")))
	ctx := context.Background()

	var bFired int
	b.Subscribe("", func(Change) { bFired++ })

	a.Use(func(_ context.Context, _ string, _, _ any) (Result, error) {
		return Veto("a only"), nil
	})

	a.Set(ctx, "shared", 1)
	b.Set(ctx, "shared", 2)

	if _, ok := a.Get("shared"); ok {
		t.Fatalf("a committed despite its veto")
	}
	if got, _ := b.Get("shared"); got != 2 {
		t.Fatalf("b state = %v", got)
	}
	if bFired != 1 {
		t.Fatalf("b fired %d times", bFired)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	tree := New()
	ctx := context.Background()
	tree.Set(ctx, "user/name", "ada")

	snapshot := tree.Snapshot().(map[string]any)
	snapshot["user"].(map[string]any)["name"] = "mutated"

	if got, _ := tree.Get("user/name"); got != "ada" {
		t.Fatalf("snapshot mutation leaked into store: %v", got)
	}
}

func TestSerializedWritesLinearizeSamePath(t *testing.T) {
	tree := New(WithSerializedWrites())
	ctx := context.Background()

	// Each write increments based on prev; without serialization two
	// overlapping increments could both read the same prev.
	tree.Use(func(_ context.Context, _ string, next, prev any) (Result, error) {
		base, _ := prev.(int)
		return Replace(base + next.(int)), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree.Set(ctx, "counter", 1)
		}()
	}
	wg.Wait()

	if got, _ := tree.Get("counter"); got != 50 {
		t.Fatalf("counter = %v, want 50", got)
	}
}

func TestGetResultReadableDuringConcurrentWrites(t *testing.T) {
	tree := New()
	ctx := context.Background()
	tree.Set(ctx, "user/name", "ada")
	tree.Set(ctx, "user/age", 0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			tree.Set(ctx, "user/age", i)
		}
	}()

	// Writes replace nodes copy-on-write, so a map obtained from Get stays
	// a stable snapshot while other goroutines keep committing.
	for i := 0; i < 500; i++ {
		snapshot, ok := tree.Get("user")
		if !ok {
			t.Fatalf("user missing mid-write")
		}
		user := snapshot.(map[string]any)
		for key := range user {
			if key == "name" && user[key] != "ada" {
				t.Fatalf("name = %v", user[key])
			}
		}
	}
	<-done
}

func TestSetNeverReturnsError(t *testing.T) {
	tree := New()
	tree.Use(func(_ context.Context, _ string, _, _ any) (Result, error) {
		return Result{}, errors.New("boom")
	}, WithStageName("exploder"))

	outcome := tree.Set(context.Background(), "x", 1)
	if outcome.Committed {
		t.Fatalf("faulted stage committed")
	}
	var stageErr *StageError
	if !errors.As(outcome.Fault, &stageErr) {
		t.Fatalf("fault = %v", outcome.Fault)
	}
	if stageErr.Stage != "exploder" || stageErr.Path != "x" {
		t.Fatalf("stage error = %+v", stageErr)
	}
}
