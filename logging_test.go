package reactive

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := SlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	logger.Log(LogEvent{Event: EventLoaderStale, Model: "m", Field: "f", Generation: 1})
	if buf.Len() != 0 {
		t.Fatalf("expected stale event at debug level, got %q", buf.String())
	}

	logger.Log(LogEvent{Event: EventLoaderFailed, Model: "m", Field: "f", Generation: 2, Err: errors.New("boom")})
	out := buf.String()
	for _, want := range []string{"level=ERROR", "loader.failed", "field=f", "generation=2", "error=boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestLoggerFuncAndNil(t *testing.T) {
	var got []string
	LoggerFunc(func(e LogEvent) { got = append(got, e.Event) }).Log(LogEvent{Event: "x"})
	LoggerFunc(nil).Log(LogEvent{Event: "y"})
	SlogLogger(nil).Log(LogEvent{Event: "z"})
	if len(got) != 1 || got[0] != "x" {
		t.Fatalf("unexpected events %v", got)
	}
}
