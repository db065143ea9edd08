// internal/update/update_test.go
package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func releaseServer(t *testing.T, status int, body string) *Checker {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return &Checker{URL: server.URL, Client: server.Client()}
}

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1.0.0", "v1.0.0"},
		{"v1.0.0", "v1.0.0"},
		{"", "v"},
	}
	for _, tt := range tests {
		if got := normalizeVersion(tt.input); got != tt.expected {
			t.Errorf("normalizeVersion(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestCheck_DevVersionSkipsNetwork(t *testing.T) {
	c := &Checker{URL: "http://127.0.0.1:1"}
	if c.Check(context.Background(), "dev") != nil || c.Check(context.Background(), "") != nil {
		t.Error("dev builds should not check")
	}
}

func TestCheck_Versions(t *testing.T) {
	tests := []struct {
		name    string
		current string
		tag     string
		want    bool
	}{
		{"patch update", "1.0.0", "v1.0.1", true},
		{"minor update", "v1.0.0", "v1.1.0", true},
		{"major update", "1.9.9", "2.0.0", true},
		{"same version", "1.0.0", "v1.0.0", false},
		{"current newer", "2.0.0", "v1.0.0", false},
		{"prerelease older", "1.0.0", "v1.0.0-rc.1", false},
		{"invalid current", "nightly", "v1.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := releaseServer(t, http.StatusOK, `{"tag_name":"`+tt.tag+`","html_url":"https://github.com/rackspace/rsmail-cli/releases/tag/`+tt.tag+`"}`)
			result := c.Check(context.Background(), tt.current)
			if result == nil {
				t.Fatal("expected result")
			}
			if result.UpdateAvailable != tt.want {
				t.Errorf("UpdateAvailable = %v, want %v", result.UpdateAvailable, tt.want)
			}
			if result.LatestVersion[0] == 'v' {
				t.Errorf("LatestVersion should drop the v prefix: %q", result.LatestVersion)
			}
		})
	}
}

func TestCheck_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"rate limited", http.StatusForbidden, `{"message":"API rate limit exceeded"}`},
		{"invalid json", http.StatusOK, `{not json`},
		{"empty tag", http.StatusOK, `{"tag_name":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := releaseServer(t, tt.status, tt.body).Check(context.Background(), "1.0.0"); result != nil {
				t.Errorf("expected nil, got %+v", result)
			}
		})
	}
}

func TestCheck_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	if result := (&Checker{URL: url}).Check(context.Background(), "1.0.0"); result != nil {
		t.Errorf("expected nil on connection error, got %+v", result)
	}
}

func TestCheck_ContextCanceled(t *testing.T) {
	c := releaseServer(t, http.StatusOK, `{"tag_name":"v2.0.0"}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if result := c.Check(ctx, "1.0.0"); result != nil {
		t.Errorf("expected nil for canceled context, got %+v", result)
	}
}

func TestCheckResult_Notice(t *testing.T) {
	var nilResult *CheckResult
	if nilResult.Notice() != "" {
		t.Error("nil result should have no notice")
	}
	if (&CheckResult{UpdateAvailable: false}).Notice() != "" {
		t.Error("up to date should have no notice")
	}
	r := &CheckResult{CurrentVersion: "1.0.0", LatestVersion: "1.1.0", UpdateURL: "https://example.test/r", UpdateAvailable: true}
	if r.Notice() != "rsmail 1.1.0 is available (you have 1.0.0): https://example.test/r" {
		t.Errorf("Notice = %q", r.Notice())
	}
}

func TestNewChecker(t *testing.T) {
	c := NewChecker()
	if c.URL != DefaultReleasesURL || c.Client == nil {
		t.Errorf("unexpected checker %+v", c)
	}
}
