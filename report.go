package store

import (
	"context"
	"log/slog"
	"time"
)

// EventKind classifies store events surfaced through the Reporter.
type EventKind string

const (
	// EventCommit records a successful write.
	EventCommit EventKind = "commit"
	// EventVeto records a deliberate middleware rejection.
	EventVeto EventKind = "veto"
	// EventStageFault records a stage that errored or panicked; the write was
	// rejected fail-closed.
	EventStageFault EventKind = "stage_fault"
	// EventSinkFault records a failed external persistence write. The
	// in-memory commit still happened.
	EventSinkFault EventKind = "sink_fault"
)

// Event describes one store occurrence for logging and devtools. Rejected
// writes never become errors on the Set boundary; this channel is the only
// place they are observable.
type Event struct {
	Kind     EventKind
	Store    string
	Path     string
	Stage    string
	Reason   string
	Duration time.Duration
	Err      error
}

// Reporter records store events.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

// Report implements Reporter.
func (f ReporterFunc) Report(event Event) {
	if f != nil {
		f(event)
	}
}

type noopReporter struct{}

func (noopReporter) Report(Event) {}

// NewSlogReporter returns a Reporter that logs events through logger.
// Commits log at debug, vetoes at info, faults at warn.
func NewSlogReporter(logger *slog.Logger) Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return ReporterFunc(func(event Event) {
		attrs := []slog.Attr{
			slog.String("path", event.Path),
		}
		if event.Store != "" {
			attrs = append(attrs, slog.String("store", event.Store))
		}
		if event.Stage != "" {
			attrs = append(attrs, slog.String("stage", event.Stage))
		}
		if event.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.Reason))
		}
		if event.Duration > 0 {
			attrs = append(attrs, slog.Duration("duration", event.Duration))
		}
		if event.Err != nil {
			attrs = append(attrs, slog.Any("error", event.Err))
		}

		level := slog.LevelDebug
		switch event.Kind {
		case EventVeto:
			level = slog.LevelInfo
		case EventStageFault, EventSinkFault:
			level = slog.LevelWarn
		}
		logger.LogAttrs(context.Background(), level, "store "+string(event.Kind), attrs...)
	})
}
