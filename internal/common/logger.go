package common

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// Fields represents structured logging fields.
type Fields map[string]any

// ParseLevel maps a configured level name to a slog level. Unknown names
// select info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a logger writing to w in the given format ("json" or
// "console").
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// SetupLogger installs a stderr logger as the process default.
func SetupLogger(level slog.Level, format string) *slog.Logger {
	logger := NewLogger(os.Stderr, level, format)
	slog.SetDefault(logger)
	return logger
}

func (f Fields) attrs(extra int) []slog.Attr {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(f)+extra)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, f[k]))
	}
	return attrs
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs err at error level with fields. A nil logger selects the
// process default.
func LogError(ctx context.Context, logger *slog.Logger, err error, msg string, fields Fields) {
	attrs := append(fields.attrs(1), slog.String("error", err.Error()))
	orDefault(logger).LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

// LogWarn logs a non-fatal failure, such as a sink that could not be written.
func LogWarn(ctx context.Context, logger *slog.Logger, err error, msg string, fields Fields) {
	attrs := append(fields.attrs(1), slog.String("error", err.Error()))
	orDefault(logger).LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

// LogInfo logs msg with fields.
func LogInfo(ctx context.Context, logger *slog.Logger, msg string, fields Fields) {
	orDefault(logger).LogAttrs(ctx, slog.LevelInfo, msg, fields.attrs(0)...)
}
