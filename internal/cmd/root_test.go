package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestUnknownCommandSuggestion(t *testing.T) {
	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"mailboxs"})
	})
	if err == nil {
		t.Fatal("expected unknown command error")
	}
	if !strings.Contains(stderr, `Did you mean "mailboxes"?`) {
		t.Errorf("expected suggestion, got %q", stderr)
	}
	if ExitCode(err) != exitUsage {
		t.Errorf("exit code = %d, want %d", ExitCode(err), exitUsage)
	}
}

func TestUnknownFlagSuggestion(t *testing.T) {
	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"mailboxes", "list", "--domian", "example.com"})
	})
	if err == nil {
		t.Fatal("expected unknown flag error")
	}
	if !strings.Contains(stderr, `Did you mean "--domain"?`) {
		t.Errorf("expected flag suggestion, got %q", stderr)
	}
	if !strings.Contains(stderr, "rsmail mailboxes list --help") {
		t.Errorf("expected help hint, got %q", stderr)
	}
}

func TestJSONConflictsWithOutput(t *testing.T) {
	var err error
	_ = captureStderr(t, func() {
		err = Execute(context.Background(), []string{"--json", "--output", "text", "version"})
	})
	if err == nil || !strings.Contains(err.Error(), "--json conflicts with --output text") {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if ExitCode(err) != exitUsage {
		t.Errorf("exit code = %d, want %d", ExitCode(err), exitUsage)
	}
}

func TestQueryRequiresJSONWhenTextExplicit(t *testing.T) {
	var err error
	_ = captureStderr(t, func() {
		err = Execute(context.Background(), []string{"--output", "text", "--query", ".version", "version"})
	})
	if err == nil || !strings.Contains(err.Error(), "--query/--template") {
		t.Fatalf("expected query error, got %v", err)
	}
}

func TestQueryImpliesJSON(t *testing.T) {
	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"version", "--query", ".version"}); err != nil {
			t.Fatalf("version failed: %v", err)
		}
	})
	if strings.TrimSpace(output) != `"`+version+`"` {
		t.Errorf("unexpected output %q", output)
	}
}

func TestTemplateFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.tmpl")
	if err := os.WriteFile(path, []byte("v={{.version}}"), 0o600); err != nil {
		t.Fatal(err)
	}
	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"version", "--template", "@" + path}); err != nil {
			t.Fatalf("version failed: %v", err)
		}
	})
	if strings.TrimSpace(output) != "v="+version {
		t.Errorf("unexpected output %q", output)
	}
}

func TestNegativeTimeoutRejected(t *testing.T) {
	var err error
	_ = captureStderr(t, func() {
		err = Execute(context.Background(), []string{"--timeout", "-1s", "version"})
	})
	if err == nil || !strings.Contains(err.Error(), "--timeout must be >= 0") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	var err error
	_ = captureStderr(t, func() {
		err = Execute(context.Background(), []string{"--output", "yaml", "version"})
	})
	if err == nil {
		t.Fatal("expected invalid output error")
	}
}

func TestQuietSuppressesTextOutput(t *testing.T) {
	handler := newRouteHandler().
		On("DELETE", mailboxBase+"/alice", jsonResponse(200, ``))
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"-Q", "mailboxes", "delete", "alice"}); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
	})
	if output != "" {
		t.Errorf("quiet mode should print nothing, got %q", output)
	}
}

func TestExecuteResetsFlags(t *testing.T) {
	_ = captureStdout(t, func() {
		_ = Execute(context.Background(), []string{"--json", "version"})
	})
	output := captureStdout(t, func() {
		_ = Execute(context.Background(), []string{"version"})
	})
	if strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("flags leaked between runs: %q", output)
	}
}

func TestEnhanceUnknownErrorPassthrough(t *testing.T) {
	root := &cobra.Command{Use: "rsmail"}
	err := errors.New("some other failure")
	if got := enhanceUnknownError(err, root, root); got != err.Error() {
		t.Errorf("got %q", got)
	}
}

func TestExtractHelpers(t *testing.T) {
	if got := extractQuoted(`unknown command "mailboxs" for "rsmail"`); got != "mailboxs" {
		t.Errorf("extractQuoted = %q", got)
	}
	if got := extractQuoted("no quotes"); got != "" {
		t.Errorf("extractQuoted = %q", got)
	}
	if got := extractFlag("unknown flag: --domian"); got != "--domian" {
		t.Errorf("extractFlag = %q", got)
	}
	if got := extractFlag("unknown shorthand flag: 'x' in -x"); got != "-x" {
		t.Errorf("extractFlag = %q", got)
	}
}

func TestNormalizeAccept(t *testing.T) {
	tests := map[string]string{
		"":                 "application/json",
		"json":             "application/json",
		"XML":              "application/xml",
		"application/json": "application/json",
		" text/plain ":     "text/plain",
	}
	for in, want := range tests {
		if got := normalizeAccept(in); got != want {
			t.Errorf("normalizeAccept(%q) = %q, want %q", in, got, want)
		}
	}
}
