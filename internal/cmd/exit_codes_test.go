package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/pflag"

	"github.com/rackspace/rsmail-cli/internal/api"
	"github.com/rackspace/rsmail-cli/internal/config"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"help", pflag.ErrHelp, exitOK},
		{"not configured", config.ErrNotConfigured, exitAuth},
		{"wrapped not configured", fmt.Errorf("resolve: %w", config.ErrNotConfigured), exitAuth},
		{"unauthorized", &api.APIError{StatusCode: 401}, exitAuth},
		{"bad signature 403", &api.APIError{StatusCode: 403}, exitAuth},
		{"forbidden fault", &api.APIError{StatusCode: 403, Fault: "forbiddenFault"}, exitForbidden},
		{"not found", &api.APIError{StatusCode: 404}, exitNotFound},
		{"bad request", &api.APIError{StatusCode: 400}, exitUsage},
		{"conflict", &api.APIError{StatusCode: 409}, exitUsage},
		{"server", &api.APIError{StatusCode: 503}, exitServer},
		{"decode", &api.DecodeError{Err: errors.New("bad")}, exitGeneric},
		{"transport", &api.TransportError{Method: "GET", URL: "u", Err: errors.New("connection refused")}, exitNetwork},
		{"timeout", &api.TransportError{Method: "GET", URL: "u", Err: context.DeadlineExceeded}, exitNetwork},
		{"canceled", context.Canceled, exitNetwork},
		{"usage", errors.New("unknown command \"x\" for \"rsmail\""), exitUsage},
		{"invalid flag value", errors.New("invalid --timestamp \"x\": must be yyyyMMddHHmmss"), exitUsage},
		{"generic", errors.New("something broke"), exitGeneric},
		{"handled keeps code", &handledError{err: errors.New("x"), exitCode: exitServer}, exitServer},
		{"handled without code", &handledError{err: &api.APIError{StatusCode: 404}}, exitNotFound},
		{"lenient", lenientFailure(), exitGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
