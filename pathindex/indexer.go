// Package pathindex enumerates every reachable path inside an arbitrary
// state value, for tooling that needs to know "everything currently known":
// bulk subscription, tree rendering, interactive debugging.
package pathindex

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Option configures an Indexer.
type Option func(*Indexer)

// WithMaxEntries bounds the identity cache per generation. Non-positive
// values fall back to the default of 512.
func WithMaxEntries(n int) Option {
	return func(ix *Indexer) {
		if n > 0 {
			ix.maxEntries = n
		}
	}
}

// Indexer walks values and memoizes results by object identity, on the
// structural-sharing assumption that a mapping or sequence, once indexed,
// is replaced rather than mutated in place. The cache is generational: when
// the active generation fills up it becomes the fallback and a fresh one
// starts, so memory stays bounded no matter how many distinct subtrees pass
// through. Memoization is an optimization only; a cold Indexer returns the
// same paths as a warm one.
//
// Identity keys are addresses, so one whose object was collected can be
// reused by a new allocation. Every hit therefore also compares the cached
// element count; a mismatch is treated as a miss. Values still reachable
// from a live store root never hit that path.
type Indexer struct {
	mu         sync.Mutex
	maxEntries int
	current    map[uintptr]indexEntry
	previous   map[uintptr]indexEntry
}

type indexEntry struct {
	length int
	paths  []string
}

// New constructs an Indexer.
func New(opts ...Option) *Indexer {
	ix := &Indexer{
		maxEntries: 512,
		current:    map[uintptr]indexEntry{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ix)
		}
	}
	return ix
}

// Paths returns every terminal and intermediate path reachable in value,
// sorted. Scalar and nil leaves contribute their own path; mappings and
// sequences contribute their own path (when non-root) and recurse. The root
// itself has no path entry: the empty path addresses it implicitly.
func (ix *Indexer) Paths(value any) []string {
	key, length, cacheable := identity(value)
	if cacheable {
		ix.mu.Lock()
		if paths, ok := ix.lookup(key, length); ok {
			ix.mu.Unlock()
			return append([]string(nil), paths...)
		}
		ix.mu.Unlock()
	}

	paths := Paths(value)

	if cacheable {
		ix.mu.Lock()
		ix.store(key, length, paths)
		ix.mu.Unlock()
	}
	return append([]string(nil), paths...)
}

// Clear drops every cached entry.
func (ix *Indexer) Clear() {
	ix.mu.Lock()
	ix.current = map[uintptr]indexEntry{}
	ix.previous = nil
	ix.mu.Unlock()
}

// lookup assumes ix.mu is held. Fallback hits are promoted; a length
// mismatch means the address was recycled and the entry is dead.
func (ix *Indexer) lookup(key uintptr, length int) ([]string, bool) {
	if entry, ok := ix.current[key]; ok && entry.length == length {
		return entry.paths, true
	}
	if entry, ok := ix.previous[key]; ok && entry.length == length {
		ix.store(key, length, entry.paths)
		return entry.paths, true
	}
	return nil, false
}

// store assumes ix.mu is held.
func (ix *Indexer) store(key uintptr, length int, paths []string) {
	if len(ix.current) >= ix.maxEntries {
		ix.previous = ix.current
		ix.current = make(map[uintptr]indexEntry, ix.maxEntries)
	}
	ix.current[key] = indexEntry{length: length, paths: paths}
}

// Paths is the uncached walk behind Indexer.Paths.
func Paths(value any) []string {
	var out []string
	walk(nil, value, &out)
	sort.Strings(out)
	return out
}

func walk(prefix []string, value any, out *[]string) {
	if len(prefix) > 0 {
		*out = append(*out, strings.Join(prefix, "/"))
	}

	switch node := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(node))
		for key := range node {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if key == "" {
				continue
			}
			walk(append(prefix, key), node[key], out)
		}
	case []any:
		for i, element := range node {
			walk(append(prefix, strconv.Itoa(i)), element, out)
		}
	}
}

// identity derives a cache key and element count for reference-shaped
// values. Scalars and structs have no stable identity and are never cached.
func identity(value any) (uintptr, int, bool) {
	if value == nil {
		return 0, 0, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return 0, 0, false
		}
		return rv.Pointer(), rv.Len(), true
	case reflect.Pointer:
		if rv.IsNil() {
			return 0, 0, false
		}
		return rv.Pointer(), 0, true
	default:
		return 0, 0, false
	}
}
