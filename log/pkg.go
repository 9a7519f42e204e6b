package log

import (
	"context"
	"log/slog"
	"os"
)

// DefaultContextProvider returns the context used by the logging functions
// that do not take one.
var DefaultContextProvider = context.TODO

// defaultLog is used by the package-level logging functions.
var defaultLog = Make(os.Stderr)

// Default returns the package-level logger.
func Default() Logger { return defaultLog }

// Config reconfigures the package-level logger and returns it.
func Config(opts ...Option) Logger {
	defaultLog = defaultLog.Wrap(opts...)

	return defaultLog
}

func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.log(ctx, LevelTrace, msg, attrs)
}

func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.log(ctx, LevelDebug, msg, attrs)
}

func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.log(ctx, LevelInfo, msg, attrs)
}

func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.log(ctx, LevelWarn, msg, attrs)
}

func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.log(ctx, LevelError, msg, attrs)
}

func Trace(msg string, attrs ...slog.Attr) {
	defaultLog.log(DefaultContextProvider(), LevelTrace, msg, attrs)
}

func Debug(msg string, attrs ...slog.Attr) {
	defaultLog.log(DefaultContextProvider(), LevelDebug, msg, attrs)
}

func Info(msg string, attrs ...slog.Attr) {
	defaultLog.log(DefaultContextProvider(), LevelInfo, msg, attrs)
}

func Warn(msg string, attrs ...slog.Attr) {
	defaultLog.log(DefaultContextProvider(), LevelWarn, msg, attrs)
}

func Error(msg string, attrs ...slog.Attr) {
	defaultLog.log(DefaultContextProvider(), LevelError, msg, attrs)
}
