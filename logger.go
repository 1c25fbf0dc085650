package cgsep

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/cgsep/separability"
)

// Logger wraps slog.Logger with cgsep-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithGraph adds a graph field to the logger.
func (l *Logger) WithGraph(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("graph", name),
	}
}

// WithPair adds a class pair field to the logger.
func (l *Logger) WithPair(p separability.Pair) *Logger {
	return &Logger{
		Logger: l.Logger.With("pair", p.String()),
	}
}

// WithK adds a k (subset size) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// LogImportance logs an importance computation.
func (l *Logger) LogImportance(ctx context.Context, explainer string, graphs int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "importance failed",
			"explainer", explainer,
			"graphs", graphs,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "importance computed",
			"explainer", explainer,
			"graphs", graphs,
		)
	}
}

// LogPrune logs the outcome of misclassification pruning.
func (l *Logger) LogPrune(ctx context.Context, correct, incorrect int) {
	if incorrect > 0 {
		l.WarnContext(ctx, "pruned misclassified graphs",
			"correct", correct,
			"incorrect", incorrect,
		)
	} else {
		l.InfoContext(ctx, "no misclassified graphs",
			"correct", correct,
		)
	}
}

// LogSearch logs a k-best subset search.
func (l *Logger) LogSearch(ctx context.Context, pairs, maxK, evaluated int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "subset search failed",
			"pairs", pairs,
			"max_k", maxK,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "subset search completed",
			"pairs", pairs,
			"max_k", maxK,
			"evaluated", evaluated,
		)
	}
}

// LogExport logs a result export.
func (l *Logger) LogExport(ctx context.Context, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "export failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "results exported",
			"bytes", bytes,
		)
	}
}
