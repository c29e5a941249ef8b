package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newBufLogger() (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	l, buf := newBufLogger()
	ctx := context.Background()

	l.Info(ctx, "info msg", "k", "v")
	l.Warn(ctx, "warn msg")
	l.Error(ctx, "error msg")

	out := buf.String()
	for _, want := range []string{"info msg", "warn msg", "error msg", "k=v"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestSlogLogger_With(t *testing.T) {
	l, buf := newBufLogger()
	child := l.With("component", "syncer")
	child.Info(context.Background(), "hello")

	if !strings.Contains(buf.String(), "component=syncer") {
		t.Fatalf("expected bound attribute in output, got:\n%s", buf.String())
	}
}
