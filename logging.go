package reactive

import (
	"context"
	"log/slog"
	"time"
)

// Log event names emitted by models.
const (
	EventLoaderStarted     = "loader.started"
	EventLoaderGuard       = "loader.guard"
	EventLoaderFetch       = "loader.fetch"
	EventLoaderWritten     = "loader.written"
	EventLoaderStale       = "loader.stale"
	EventLoaderFailed      = "loader.failed"
	EventLoaderGuardFailed = "loader.guard_failed"
	EventModelDisposed     = "model.disposed"
	EventActivityFailed    = "activity.failed"
)

// LogEvent describes one model lifecycle step for logging.
type LogEvent struct {
	Event      string
	Model      string
	Field      string
	Generation uint64
	Verdict    string
	Status     string
	Duration   time.Duration
	Err        error
}

// Logger records model events.
type Logger interface {
	Log(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// Log implements Logger.
func (f LoggerFunc) Log(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) Log(LogEvent) {}

// SlogLogger forwards model events to a slog.Logger. Failures log at error
// level, stale results and guard decisions at debug, everything else at info.
func SlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return slogLogger{logger: logger}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) Log(event LogEvent) {
	attrs := []slog.Attr{
		slog.String("model", event.Model),
	}
	if event.Field != "" {
		attrs = append(attrs, slog.String("field", event.Field))
	}
	if event.Generation > 0 {
		attrs = append(attrs, slog.Uint64("generation", event.Generation))
	}
	if event.Verdict != "" {
		attrs = append(attrs, slog.String("verdict", event.Verdict))
	}
	if event.Status != "" {
		attrs = append(attrs, slog.String("status", event.Status))
	}
	if event.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", event.Duration))
	}
	level := slog.LevelInfo
	switch {
	case event.Err != nil:
		level = slog.LevelError
		attrs = append(attrs, slog.Any("error", event.Err))
	case event.Event == EventLoaderStale || event.Event == EventLoaderGuard:
		level = slog.LevelDebug
	}
	l.logger.LogAttrs(context.Background(), level, event.Event, attrs...)
}
