package store

import "sync"

// pathQueue serializes writes per normalized path while leaving disjoint
// paths free to proceed concurrently. Without it two overlapping Set calls
// to the same path can interleave mid-pipeline, so the prev value one of
// them validated against may be stale by the time it commits (the classic
// lost update). Enabled with WithSerializedWrites.
//
// The queue linearizes whole Set calls, including any time a stage spends
// blocked. Time-shifting stages (Debounce) coalesce per path on their own
// and should not be combined with serialized writes on the same store: a
// queued write cannot supersede one still holding the path.
type pathQueue struct {
	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

func newPathQueue() *pathQueue {
	return &pathQueue{locks: map[string]*pathLock{}}
}

// acquire blocks until the caller owns path, returning the release closure.
// Locks are reference counted and dropped from the table once idle.
func (q *pathQueue) acquire(path string) func() {
	q.mu.Lock()
	lock, ok := q.locks[path]
	if !ok {
		lock = &pathLock{}
		q.locks[path] = lock
	}
	lock.refs++
	q.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()
		q.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(q.locks, path)
		}
		q.mu.Unlock()
	}
}
