// Package logging configures zerolog and carries the per-request trace ID
// through context.Context. The trace ID is never stored in a package-level
// variable: concurrent requests each thread their own value.
package logging

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type ctxKey struct{}

// Setup configures the global zerolog logger. JSON output by default,
// human-readable console output in debug mode.
func Setup(level string, debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
		if lvl > zerolog.DebugLevel {
			lvl = zerolog.DebugLevel
		}
	}
	zerolog.SetGlobalLevel(lvl)
}

// WithTraceID returns a context carrying the given trace ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, traceID)
}

// TraceID returns the trace ID bound to ctx, or "unknown" when none is bound.
func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
		return id
	}
	return "unknown"
}

// FromContext returns a logger with the context's trace ID attached, so call
// sites log correlated lines without repeating the field. The pointer return
// lets callers chain level methods directly.
func FromContext(ctx context.Context) *zerolog.Logger {
	logger := log.With().Str("trace_id", TraceID(ctx)).Logger()
	return &logger
}
