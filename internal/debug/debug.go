// Package debug provides context-based debug mode with structured logging.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const debugKey contextKey = "debug_enabled"

// LogFormatEnv selects the stderr log encoding ("text" or "json").
const LogFormatEnv = "RSMAIL_LOG_FORMAT"

// redactedKeys are attribute keys whose values never reach the log output.
var redactedKeys = map[string]bool{
	"secret_key":      true,
	"signature":       true,
	"x-api-signature": true,
	"password":        true,
}

// WithDebug returns a context with debug mode enabled/disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, debugKey, enabled)
}

// IsEnabled returns true if debug mode is enabled in the context.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(debugKey).(bool); ok {
		return v
	}
	return false
}

// SetupLogger configures slog based on debug mode, writing to stderr in the
// format named by RSMAIL_LOG_FORMAT.
func SetupLogger(debugEnabled bool) {
	SetupLoggerTo(os.Stderr, debugEnabled, os.Getenv(LogFormatEnv))
}

// SetupLoggerTo installs a default logger writing to w.
func SetupLoggerTo(w io.Writer, debugEnabled bool, format string) {
	level := slog.LevelWarn
	if debugEnabled {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redact,
	}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if redactedKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, "[REDACTED]")
	}
	return a
}
