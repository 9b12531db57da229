package store

import (
	"sync"

	"github.com/google/uuid"
)

type subscription struct {
	id     string
	prefix string
	fn     Subscriber
}

// notifier is the (prefix, callback) registry behind Subscribe. Fan-out runs
// synchronously in registration order; matching is segment-wise so a prefix
// of "user" never fires for a commit at "user2/name". Registration and
// removal are O(1) amortized: removal only deletes from the id map, the
// ordering slice is compacted lazily when it grows past twice the live set.
type notifier struct {
	mu    sync.RWMutex
	subs  map[string]subscription
	order []string
}

func newNotifier() *notifier {
	return &notifier{subs: map[string]subscription{}}
}

// subscribe registers fn for every commit at or below prefix and returns an
// idempotent unsubscribe closure removing exactly this registration.
func (n *notifier) subscribe(prefix string, fn Subscriber) func() {
	sub := subscription{id: uuid.NewString(), prefix: Normalize(prefix), fn: fn}

	n.mu.Lock()
	n.subs[sub.id] = sub
	n.order = append(n.order, sub.id)
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, sub.id)
		if len(n.order) > 2*len(n.subs) {
			n.compact()
		}
		n.mu.Unlock()
	}
}

// compact drops tombstoned ids from the ordering slice. Caller holds mu.
func (n *notifier) compact() {
	live := n.order[:0]
	for _, id := range n.order {
		if _, ok := n.subs[id]; ok {
			live = append(live, id)
		}
	}
	n.order = live
}

func (n *notifier) len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

// publish fans a committed path out to every matching subscription. Each
// subscriber receives the current value at its own prefix via lookup, so by
// the time a callback observes the change the store already reflects it.
func (n *notifier) publish(path string, lookup func(string) (any, bool)) {
	n.mu.RLock()
	matched := make([]subscription, 0, len(n.subs))
	for _, id := range n.order {
		sub, ok := n.subs[id]
		if !ok {
			continue
		}
		if HasPrefix(path, sub.prefix) {
			matched = append(matched, sub)
		}
	}
	n.mu.RUnlock()

	for _, sub := range matched {
		if sub.fn == nil {
			continue
		}
		value, found := lookup(sub.prefix)
		sub.fn(Change{Path: path, Value: value, Found: found})
	}
}
