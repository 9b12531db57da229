package store

import "sync"

// ProgramCache stores compiled expression programs keyed by expression
// strings, so hot validators skip recompilation.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryProgramCache is a bounded, generational ProgramCache. When the
// active generation fills up it becomes the fallback and a fresh one starts,
// so the cache never holds more than twice maxEntries programs and stale
// expressions age out instead of accumulating.
type MemoryProgramCache struct {
	mu         sync.Mutex
	maxEntries int
	current    map[string]any
	previous   map[string]any
}

// NewMemoryProgramCache builds a cache bounded to maxEntries per
// generation. Non-positive values fall back to 256.
func NewMemoryProgramCache(maxEntries int) *MemoryProgramCache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &MemoryProgramCache{
		maxEntries: maxEntries,
		current:    map[string]any{},
	}
}

// Get returns the cached program for key. Hits against the fallback
// generation are promoted into the active one.
func (c *MemoryProgramCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if value, ok := c.current[key]; ok {
		return value, true
	}
	if value, ok := c.previous[key]; ok {
		c.store(key, value)
		return value, true
	}
	return nil, false
}

// Set caches value under key, rotating generations when full.
func (c *MemoryProgramCache) Set(key string, value any) {
	c.mu.Lock()
	c.store(key, value)
	c.mu.Unlock()
}

// Clear drops both generations.
func (c *MemoryProgramCache) Clear() {
	c.mu.Lock()
	c.current = map[string]any{}
	c.previous = nil
	c.mu.Unlock()
}

// store assumes c.mu is held.
func (c *MemoryProgramCache) store(key string, value any) {
	if len(c.current) >= c.maxEntries {
		c.previous = c.current
		c.current = make(map[string]any, c.maxEntries)
	}
	c.current[key] = value
}
