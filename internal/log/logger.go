package log

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"

	"github.com/saadjs/cycle-cli/internal/errors"
)

// Logger provides structured logging with slog
type Logger struct {
	slog *slog.Logger
}

// New creates a new Logger with the given configuration
func New(config Config) *Logger {
	out := config.Output
	if out == nil {
		out = DefaultConfig().Output
	}
	opts := &slog.HandlerOptions{Level: config.Level.ToSlogLevel()}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}
	return &Logger{slog: slog.New(handler)}
}

// Default creates a logger with default configuration
func Default() *Logger {
	return New(DefaultConfig())
}

// Discard returns a logger that drops everything. Used by tests and by
// library code constructed without a logger.
func Discard() *Logger {
	return New(Config{Level: LevelError, Output: io.Discard})
}

// With returns a new Logger with the given attributes added to all log entries
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// WithError adds error details to the logger. Coded errors contribute
// error_code and, when known, the HTTP status.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	var coded *errors.Error
	if stderrors.As(err, &coded) {
		args := []any{"error", err.Error(), "error_code", string(coded.Code)}
		if status := errors.StatusOf(err); status != 0 {
			args = append(args, "status", status)
		}
		return l.With(args...)
	}
	return l.With("error", err.Error())
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slog.DebugContext(ctx, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) { l.slog.Info(msg, args...) }

func (l *Logger) Warn(msg string, args ...any) { l.slog.Warn(msg, args...) }

func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *Logger) *Logger {
	if l == nil {
		return Discard()
	}
	return l
}
