package store

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogReporterLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reporter := NewSlogReporter(logger)

	tree := New(WithReporter(reporter), WithScope(NewScope("demo")))
	ctx := context.Background()

	tree.Set(ctx, "ok", 1)

	tree.Use(func(_ context.Context, _ string, _, _ any) (Result, error) {
		return Veto("not today"), nil
	}, WithStageName("gate"))
	tree.Set(ctx, "ok", 2)

	out := buf.String()
	if !strings.Contains(out, "store commit") || !strings.Contains(out, "store=demo") {
		t.Fatalf("missing commit log: %s", out)
	}
	if !strings.Contains(out, "store veto") || !strings.Contains(out, "reason=\"not today\"") {
		t.Fatalf("missing veto log: %s", out)
	}
	if !strings.Contains(out, "stage=gate") {
		t.Fatalf("missing stage attribution: %s", out)
	}
}

func TestReporterFuncNilSafe(t *testing.T) {
	var fn ReporterFunc
	fn.Report(Event{Kind: EventCommit})
}
