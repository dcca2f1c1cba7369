package pathfiles

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pathfiles-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithRoot adds the traversal root to the logger.
func (l *Logger) WithRoot(root string) *Logger {
	return &Logger{
		Logger: l.Logger.With("root", root),
	}
}

// WithTraversal adds a traversal ID to the logger (useful for correlating
// concurrent walks).
func (l *Logger) WithTraversal(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("traversal", id),
	}
}

// WithPath adds a file path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogSkip logs an entry that was skipped during traversal.
func (l *Logger) LogSkip(ctx context.Context, err error) {
	l.WarnContext(ctx, "entry skipped",
		"error", err,
	)
}

// LogOpen logs a stream open attempt.
func (l *Logger) LogOpen(ctx context.Context, path string, inUse int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "file opened",
			"path", path,
			"in_use", inUse,
		)
	}
}

// LogTraversal logs the end of a traversal.
func (l *Logger) LogTraversal(ctx context.Context, files, skipped int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "traversal aborted",
			"files", files,
			"skipped", skipped,
			"error", err,
		)
	case skipped > 0:
		l.WarnContext(ctx, "traversal completed with skipped entries",
			"files", files,
			"skipped", skipped,
		)
	default:
		l.InfoContext(ctx, "traversal completed",
			"files", files,
		)
	}
}
