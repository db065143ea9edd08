package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/rackspace/rsmail-cli/internal/api"
	"github.com/rackspace/rsmail-cli/internal/config"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"not configured", config.ErrNotConfigured, []string{"No credentials configured", "rsmail auth login", config.EnvAPIKey}},
		{"unauthorized", &api.APIError{StatusCode: 401, Body: "denied"}, []string{"HTTP 401", "denied", "system clock"}},
		{"forbidden fault", &api.APIError{StatusCode: 403, Fault: "forbiddenFault"}, []string{"customer account", "--account"}},
		{"not found", &api.APIError{StatusCode: 404, RequestID: "req-1"}, []string{"rsmail mailboxes list", "Request ID: req-1"}},
		{"conflict", &api.APIError{StatusCode: 409}, []string{"mailboxes edit"}},
		{"server", &api.APIError{StatusCode: 502}, []string{"not your fault"}},
		{"decode", &api.DecodeError{Err: errors.New("invalid character '<'")}, []string{"Unexpected response", "--format json"}},
		{"refused", &api.TransportError{Method: "GET", URL: "u", Err: errors.New("dial tcp: connection refused")}, []string{"Connection refused"}},
		{"dns", &api.TransportError{Method: "GET", URL: "u", Err: errors.New("no such host")}, []string{"DNS resolution failed"}},
		{"tls", &api.TransportError{Method: "GET", URL: "u", Err: errors.New("x509: certificate has expired")}, []string{"TLS certificate error"}},
		{"transport", &api.TransportError{Method: "GET", URL: "u", Err: errors.New("EOF")}, []string{"Request failed", "--timeout"}},
		{"generic", errors.New("boom"), []string{"Error: boom"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HandleError(tt.err)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("HandleError() missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestHandleErrorNil(t *testing.T) {
	if got := HandleError(nil); got != "" {
		t.Errorf("HandleError(nil) = %q", got)
	}
}

func TestHandleErrorSuggestions(t *testing.T) {
	err := &suggestionError{
		err:         &api.APIError{StatusCode: 404},
		suggestions: []string{"alice", "alina"},
	}
	got := HandleError(err)
	if !strings.Contains(got, "HTTP 404") {
		t.Errorf("wrapped error should still be classified:\n%s", got)
	}
	if !strings.Contains(got, "Did you mean: alice, alina?") {
		t.Errorf("missing suggestions:\n%s", got)
	}
	if !api.IsNotFoundError(err) {
		t.Error("suggestionError should unwrap to the API error")
	}
}
