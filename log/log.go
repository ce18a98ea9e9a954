// Package log provides structured logging for the enclave prover's
// batch-verification pipeline. It wraps Go's log/slog, but renders records
// through the LogEntry/LogFormatter abstraction in formatter.go rather than
// slog's built-in handlers, so the same prover process can be told (via
// config) to emit JSON for log aggregation, plain text for a terminal, or
// ANSI color for an interactive enclave operator session.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Logger wraps slog.Logger with per-module child-logger conveniences.
type Logger struct {
	inner *slog.Logger
}

// defaultLogger is the process-wide logger used by the package-level
// convenience functions.
var defaultLogger *Logger

func init() {
	defaultLogger = New(slog.LevelInfo)
}

// New creates a Logger that renders JSON to stderr at the given level. It is
// equivalent to NewWithFormat(level, "json").
func New(level slog.Level) *Logger {
	return NewWithFormat(level, "json")
}

// NewWithFormat creates a Logger that writes to stderr at the given level,
// rendering each record with the LogFormatter named by format: "json"
// (default), "text", or "color". An unrecognised format falls back to JSON.
func NewWithFormat(level slog.Level, format string) *Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter is NewWithFormat with an explicit destination, letting
// callers redirect enclave logs to something other than stderr (a file, a
// pipe into the host's log collector) without losing the format selection.
func NewWithWriter(w io.Writer, level slog.Level, format string) *Logger {
	return &Logger{inner: slog.New(newFormatterHandler(w, level, formatterFor(format)))}
}

// formatterFor resolves a config-facing format name to the LogFormatter
// that renders it.
func formatterFor(format string) LogFormatter {
	switch format {
	case "text":
		return &TextFormatter{}
	case "color":
		return &ColorFormatter{}
	default:
		return &JSONFormatter{}
	}
}

// formatterHandler is a slog.Handler that defers record rendering to a
// LogFormatter instead of slog's own Text/JSONHandler encoders, so the
// handler-selection logic lives in one place (formatterFor) rather than
// scattered across slog.Handler implementations.
type formatterHandler struct {
	w         io.Writer
	mu        *sync.Mutex
	level     slog.Leveler
	formatter LogFormatter
	attrs     []slog.Attr
	groupPfx  string
}

func newFormatterHandler(w io.Writer, level slog.Leveler, f LogFormatter) *formatterHandler {
	return &formatterHandler{w: w, mu: &sync.Mutex{}, level: level, formatter: f}
}

func (h *formatterHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.level != nil {
		min = h.level.Level()
	}
	return level >= min
}

func (h *formatterHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]interface{}, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields[h.groupPfx+a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[h.groupPfx+a.Key] = a.Value.Any()
		return true
	})

	entry := LogEntry{
		Timestamp: r.Time,
		Level:     slogLevelToLogLevel(r.Level),
		Message:   r.Message,
		Fields:    fields,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, h.formatter.Format(entry)+"\n")
	return err
}

func (h *formatterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *formatterHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.groupPfx = h.groupPfx + name + "."
	return &next
}

// slogLevelToLogLevel maps slog's level scale onto formatter.go's LogLevel.
// slog has no FATAL level: every level at or above slog.LevelError maps to
// ERROR, so this function never returns FATAL.
func slogLevelToLogLevel(l slog.Level) LogLevel {
	switch {
	case l < slog.LevelInfo:
		return DEBUG
	case l < slog.LevelWarn:
		return INFO
	case l < slog.LevelError:
		return WARN
	default:
		return ERROR
	}
}

// NewWithHandler creates a Logger backed by the supplied slog.Handler. This
// is useful for testing or for writing to a custom destination.
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{inner: slog.New(h)}
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the current package-level default logger.
func Default() *Logger {
	return defaultLogger
}

// Module returns a child logger with an additional "module" attribute. This
// is the primary way subsystems (evm, txpool, p2p, ...) obtain their own
// contextual logger.
func (l *Logger) Module(name string) *Logger {
	return &Logger{inner: l.inner.With("module", name)}
}

// With returns a child logger with additional key-value context.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }

// Info logs at LevelInfo.
func (l *Logger) Info(msg string, args ...any) { l.inner.Info(msg, args...) }

// Warn logs at LevelWarn.
func (l *Logger) Warn(msg string, args ...any) { l.inner.Warn(msg, args...) }

// Error logs at LevelError.
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

// ---------------------------------------------------------------------------
// Package-level convenience functions -- delegate to defaultLogger.
// ---------------------------------------------------------------------------

// Debug logs at LevelDebug using the default logger.
func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }

// Info logs at LevelInfo using the default logger.
func Info(msg string, args ...any) { defaultLogger.Info(msg, args...) }

// Warn logs at LevelWarn using the default logger.
func Warn(msg string, args ...any) { defaultLogger.Warn(msg, args...) }

// Error logs at LevelError using the default logger.
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }
