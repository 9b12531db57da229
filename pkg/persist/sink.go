// Package persist provides the write-through persistence middleware and the
// external sink contract it targets. Sinks are best-effort, append or
// overwrite only: a failed write never vetoes the in-memory commit, it is
// only reported.
package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Sink accepts serialized values keyed by store path.
type Sink interface {
	Write(ctx context.Context, key string, payload []byte) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, key string, payload []byte) error

// Write implements Sink.
func (f SinkFunc) Write(ctx context.Context, key string, payload []byte) error {
	if f == nil {
		return nil
	}
	return f(ctx, key, payload)
}

// MemorySink keeps payloads in memory, for tests and examples.
type MemorySink struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemorySink constructs an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{entries: map[string][]byte{}}
}

// Write stores payload under key, overwriting any previous entry.
func (s *MemorySink) Write(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	s.entries[key] = append([]byte(nil), payload...)
	s.mu.Unlock()
	return nil
}

// Read returns the payload stored under key.
func (s *MemorySink) Read(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), payload...), true
}

// Len returns the number of stored entries.
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// DirSink writes one file per key under a base directory. Path separators in
// keys become nested directories.
type DirSink struct {
	dir string
	ext string
}

// NewDirSink constructs a sink rooted at dir. ext, when non-empty, is
// appended to every file name.
func NewDirSink(dir, ext string) *DirSink {
	return &DirSink{dir: dir, ext: ext}
}

// Write persists payload to the file derived from key.
func (s *DirSink) Write(_ context.Context, key string, payload []byte) error {
	name := strings.TrimSpace(key)
	if name == "" {
		name = "root"
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("persist: key %q escapes sink directory", key)
	}
	target := filepath.Join(s.dir, filepath.FromSlash(name)+s.ext)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("persist: mkdir for key %q: %w", key, err)
	}
	if err := os.WriteFile(target, payload, 0o644); err != nil {
		return fmt.Errorf("persist: write key %q: %w", key, err)
	}
	return nil
}
