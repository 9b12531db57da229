package store

import (
	"context"
	"testing"
)

func TestNotifierPrefixFanOut(t *testing.T) {
	tree := New()
	ctx := context.Background()

	fired := map[string]int{}
	tree.Subscribe("", func(Change) { fired["root"]++ })
	tree.Subscribe("user", func(Change) { fired["user"]++ })
	tree.Subscribe("user/name", func(Change) { fired["user/name"]++ })
	tree.Subscribe("user2", func(Change) { fired["user2"]++ })
	tree.Subscribe("other", func(Change) { fired["other"]++ })

	tree.Set(ctx, "user/name/first", "ada")

	if fired["root"] != 1 || fired["user"] != 1 || fired["user/name"] != 1 {
		t.Fatalf("fired = %v", fired)
	}
	if fired["user2"] != 0 || fired["other"] != 0 {
		t.Fatalf("false positives: %v", fired)
	}
}

func TestNotifierDeliversValueAtSubscribedPath(t *testing.T) {
	tree := New()
	ctx := context.Background()
	tree.Set(ctx, "user/age", 36)

	var got Change
	tree.Subscribe("user", func(change Change) { got = change })

	tree.Set(ctx, "user/name", "ada")

	if got.Path != "user/name" {
		t.Fatalf("path = %q", got.Path)
	}
	user, ok := got.Value.(map[string]any)
	if !ok || user["name"] != "ada" || user["age"] != 36 {
		t.Fatalf("value = %v", got.Value)
	}
	if !got.Found {
		t.Fatalf("found = false")
	}
}

func TestNotifierFiresInRegistrationOrder(t *testing.T) {
	tree := New()
	var order []string
	tree.Subscribe("", func(Change) { order = append(order, "first") })
	tree.Subscribe("", func(Change) { order = append(order, "second") })
	tree.Subscribe("", func(Change) { order = append(order, "third") })

	tree.Set(context.Background(), "x", 1)

	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Fatalf("order = %v", order)
	}
}

func TestNotifierCompactsTombstones(t *testing.T) {
	n := newNotifier()
	unsubs := make([]func(), 0, 100)
	for i := 0; i < 100; i++ {
		unsubs = append(unsubs, n.subscribe("", func(Change) {}))
	}
	for _, unsubscribe := range unsubs[:99] {
		unsubscribe()
	}

	if n.len() != 1 {
		t.Fatalf("live subscriptions = %d", n.len())
	}
	if len(n.order) > 2*n.len()+1 {
		t.Fatalf("order slice not compacted: %d entries", len(n.order))
	}
}

func TestNotifierSubscriptionPrefixIsNormalized(t *testing.T) {
	tree := New()
	var fired int
	tree.Subscribe("//user/", func(Change) { fired++ })

	tree.Set(context.Background(), "user/name", "ada")
	if fired != 1 {
		t.Fatalf("fired = %d", fired)
	}
}
