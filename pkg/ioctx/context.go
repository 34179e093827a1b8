// Package ioctx threads a command's output streams and logger through a
// context, so subcommands and the terminal view never reach for os.Stdout
// or slog.Default directly.
package ioctx

import (
	"context"
	"io"
	"log/slog"
)

type stdoutKey struct{}
type stderrKey struct{}
type loggerKey struct{}

func valueOr[T any](ctx context.Context, key any, fallback T) T {
	if v, ok := ctx.Value(key).(T); ok {
		return v
	}
	return fallback
}

// StdoutFromContext returns the command's stdout, or io.Discard.
func StdoutFromContext(ctx context.Context) io.Writer {
	return valueOr[io.Writer](ctx, stdoutKey{}, io.Discard)
}

func StdoutToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey{}, w)
}

// StderrFromContext returns the command's stderr, or io.Discard.
func StderrFromContext(ctx context.Context) io.Writer {
	return valueOr[io.Writer](ctx, stderrKey{}, io.Discard)
}

func StderrToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stderrKey{}, w)
}

// LoggerFromContext returns the logger set by LoggerToContext, falling back
// to slog.Default.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return valueOr(ctx, loggerKey{}, slog.Default())
}

func LoggerToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}
