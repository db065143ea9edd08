// internal/debug/debug_test.go
package debug

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestWithDebug(t *testing.T) {
	ctx := WithDebug(context.Background(), true)
	if !IsEnabled(ctx) {
		t.Error("IsEnabled should return true when debug is enabled")
	}
}

func TestIsEnabled_DefaultFalse(t *testing.T) {
	ctx := context.Background()
	if IsEnabled(ctx) {
		t.Error("IsEnabled should return false by default")
	}
}

func TestWithDebug_Disabled(t *testing.T) {
	ctx := WithDebug(context.Background(), false)
	if IsEnabled(ctx) {
		t.Error("IsEnabled should return false when debug is disabled")
	}
}

func TestSetupLogger_DebugEnabled(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	SetupLogger(true)

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("SetupLogger(true) should enable debug level logging")
	}
}

func TestSetupLogger_DebugDisabled(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	SetupLogger(false)

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("SetupLogger(false) should disable debug level logging")
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelWarn) {
		t.Error("SetupLogger(false) should enable warn level logging")
	}
}

func TestSetupLoggerTo_JSONRedactsSecrets(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	SetupLoggerTo(&buf, true, "JSON")
	slog.Debug("signed", "signature", "k:20240101000000:abc", "secret_key", "s", "method", "GET")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["signature"] != "[REDACTED]" || line["secret_key"] != "[REDACTED]" {
		t.Errorf("secrets not redacted: %v", line)
	}
	if line["method"] != "GET" {
		t.Errorf("method = %v", line["method"])
	}
}

func TestSetupLoggerTo_Text(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	SetupLoggerTo(&buf, false, "")
	slog.Info("hidden")
	slog.Warn("shown", "password", "hunter2")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered: %q", out)
	}
	if !strings.Contains(out, "msg=shown") || strings.Contains(out, "hunter2") {
		t.Errorf("unexpected text output: %q", out)
	}
}
