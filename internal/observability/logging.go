// Package observability carries per-build logging context (build id, stage)
// through context.Context so every log line of a build can be correlated.
package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
)

// LogContext holds structured logging context information.
type LogContext struct {
	BuildID string
	Stage   string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithBuildID adds a build ID to the context.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	lc := FromContext(ctx)
	lc.BuildID = buildID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := FromContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext returns the LogContext stored in ctx, or a zero value.
func FromContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func contextAttrs(ctx context.Context, attrs []slog.Attr) []slog.Attr {
	lc := FromContext(ctx)
	out := make([]slog.Attr, 0, len(attrs)+2)
	if lc.BuildID != "" {
		out = append(out, logfields.BuildID(lc.BuildID))
	}
	if lc.Stage != "" {
		out = append(out, logfields.Stage(lc.Stage))
	}
	return append(out, attrs...)
}

// DebugContext logs at debug level with the context attributes prepended.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelDebug, msg, contextAttrs(ctx, attrs)...)
}

// InfoContext logs at info level with the context attributes prepended.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelInfo, msg, contextAttrs(ctx, attrs)...)
}

// WarnContext logs at warn level with the context attributes prepended.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelWarn, msg, contextAttrs(ctx, attrs)...)
}

// ErrorContext logs at error level with the context attributes prepended.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelError, msg, contextAttrs(ctx, attrs)...)
}
