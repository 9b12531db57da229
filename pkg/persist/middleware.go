package persist

import (
	"context"

	store "github.com/goliatone/go-store"
)

// WriteThroughOption configures the write-through stage.
type WriteThroughOption func(*writeThrough)

// WithCodec selects the serialization codec. Defaults to JSON.
func WithCodec(codec Codec) WriteThroughOption {
	return func(w *writeThrough) {
		if codec != nil {
			w.codec = codec
		}
	}
}

// WithReporter routes sink faults to reporter, typically the same one the
// owning store uses.
func WithReporter(reporter store.Reporter) WriteThroughOption {
	return func(w *writeThrough) {
		if reporter != nil {
			w.reporter = reporter
		}
	}
}

// WithKeyFunc overrides how a store path maps to a sink key. Defaults to
// the path itself.
func WithKeyFunc(fn func(path string) string) WriteThroughOption {
	return func(w *writeThrough) {
		if fn != nil {
			w.key = fn
		}
	}
}

type writeThrough struct {
	sink     Sink
	codec    Codec
	reporter store.Reporter
	key      func(path string) string
}

// WriteThrough builds a side-effecting middleware stage that serializes
// every candidate value and hands it to sink, passing the value through
// untouched. Sink and serialization failures are reported as sink faults
// and never block the in-memory commit; the store makes no transactional
// promise about the sink.
func WriteThrough(sink Sink, opts ...WriteThroughOption) store.Middleware {
	w := &writeThrough{
		sink:  sink,
		codec: JSONCodec{},
		key:   func(path string) string { return path },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	return func(ctx context.Context, path string, next, _ any) (store.Result, error) {
		payload, err := w.codec.Marshal(next)
		if err == nil {
			err = w.sink.Write(ctx, w.key(path), payload)
		}
		if err != nil && w.reporter != nil {
			w.reporter.Report(store.Event{
				Kind: store.EventSinkFault,
				Path: path,
				Err:  err,
			})
		}
		return store.Unchanged(), nil
	}
}
