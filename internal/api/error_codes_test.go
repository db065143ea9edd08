package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodeFromStatus(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		want       ErrorCode
	}{
		{"400 Bad Request", 400, ErrBadRequest},
		{"401 Unauthorized", 401, ErrUnauthorized},
		{"403 Forbidden", 403, ErrUnauthorized},
		{"404 Not Found", 404, ErrNotFound},
		{"409 Conflict", 409, ErrConflict},
		{"500 Server Error", 500, ErrServerError},
		{"503 Service Unavailable", 503, ErrServerError},
		{"200 OK (unknown)", 200, ErrUnknown},
		{"418 Teapot (unknown)", 418, ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ErrorCodeFromStatus(tt.statusCode)
			if got != tt.want {
				t.Errorf("ErrorCodeFromStatus(%d) = %v, want %v", tt.statusCode, got, tt.want)
			}
		})
	}
}

func TestErrorCodeSuggestion(t *testing.T) {
	codes := []ErrorCode{ErrBadRequest, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrConflict, ErrServerError, ErrTimeout, ErrNetwork, ErrDecode}
	for _, code := range codes {
		if code.Suggestion() == "" {
			t.Errorf("%s has no suggestion", code)
		}
	}
	if ErrUnknown.Suggestion() != "" {
		t.Errorf("unknown code should have no suggestion")
	}
}

func TestStructuredErrorFromAPIError(t *testing.T) {
	t.Run("signature rejection", func(t *testing.T) {
		se := StructuredErrorFromAPIError(&APIError{StatusCode: 403, Body: "Authentication failed", Fault: "unauthorizedFault"})
		if se.Code != ErrUnauthorized {
			t.Errorf("code = %s, want %s", se.Code, ErrUnauthorized)
		}
		if se.Context["fault"] != "unauthorizedFault" {
			t.Errorf("fault context = %v", se.Context["fault"])
		}
	})

	t.Run("permission fault", func(t *testing.T) {
		se := StructuredErrorFromAPIError(&APIError{StatusCode: 403, Body: "no access", Fault: "forbiddenFault"})
		if se.Code != ErrForbidden {
			t.Errorf("code = %s, want %s", se.Code, ErrForbidden)
		}
	})

	t.Run("request id is carried", func(t *testing.T) {
		se := StructuredErrorFromAPIError(&APIError{StatusCode: 404, Body: "missing", RequestID: "abc"})
		if se.Code != ErrNotFound || se.Message != "missing" {
			t.Errorf("unexpected %+v", se)
		}
		if se.Context["request_id"] != "abc" || se.Context["status_code"] != 404 {
			t.Errorf("unexpected context %v", se.Context)
		}
	})
}

func TestStructuredErrorFromError(t *testing.T) {
	if StructuredErrorFromError(nil) != nil {
		t.Fatal("nil error should map to nil")
	}

	existing := NewStructuredError(ErrConflict, "exists")
	if got := StructuredErrorFromError(fmt.Errorf("wrapped: %w", existing)); got != existing {
		t.Errorf("existing structured error should pass through")
	}

	if got := StructuredErrorFromError(&DecodeError{Body: "<html>", Err: errors.New("bad")}); got.Code != ErrDecode {
		t.Errorf("decode code = %s", got.Code)
	}

	network := StructuredErrorFromError(&TransportError{Method: "GET", URL: "https://x/y", Err: errors.New("connection refused")})
	if network.Code != ErrNetwork {
		t.Errorf("transport code = %s", network.Code)
	}
	if network.Context["method"] != "GET" || network.Context["url"] != "https://x/y" {
		t.Errorf("transport context = %v", network.Context)
	}

	timeout := StructuredErrorFromError(&TransportError{Method: "GET", URL: "https://x/y", Err: context.DeadlineExceeded})
	if timeout.Code != ErrTimeout {
		t.Errorf("deadline code = %s", timeout.Code)
	}

	if got := StructuredErrorFromError(errors.New("other")); got.Code != ErrUnknown {
		t.Errorf("plain error code = %s", got.Code)
	}
}

func TestStructuredErrorJSON(t *testing.T) {
	se := NewStructuredError(ErrNotFound, "Mailbox not found")
	data, err := json.Marshal(se)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["code"] != "not_found" || decoded["message"] != "Mailbox not found" {
		t.Errorf("unexpected JSON %s", data)
	}
	if _, ok := decoded["context"]; ok {
		t.Errorf("empty context should be omitted: %s", data)
	}
	if se.Error() != "[not_found] Mailbox not found" {
		t.Errorf("Error() = %q", se.Error())
	}
}
