// Package logging builds the gateway's slog logger and carries it through
// request contexts.
//
// Records are JSON or text, filtered by level, and passed through a masq
// hook that hides credentials. Failures are logged with the operation, the
// request path and the error:
//
//	logging.FromContext(ctx).ErrorContext(ctx, "upstream request failed",
//	    slog.String("operation", "upstream.Forward"),
//	    slog.String("path", r.URL.Path),
//	    slog.Any("error", err),
//	)
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

type contextKey struct{}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// New returns a logger writing to w. format "text" selects the text handler,
// anything else JSON. Unknown levels mean info; debug adds source locations.
func New(level, format string, w io.Writer) *slog.Logger {
	lvl, ok := levels[strings.ToLower(level)]
	if !ok {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl == slog.LevelDebug,
		ReplaceAttr: redactAttr(),
	}

	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// WithLogger attaches logger to ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger attached by WithLogger, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// Discard returns a logger that drops every record. Constructors that accept
// a nil logger fall back to it.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
