package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{StatusCode: 404, Body: "Not found"}
	if err.Error() != "API error (status 404): Not found" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	err = &APIError{StatusCode: 404, Body: "Not found", Fault: "itemNotFoundFault"}
	if err.Error() != "API error (status 404, itemNotFoundFault): Not found" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestIsNotFoundError(t *testing.T) {
	if !IsNotFoundError(&APIError{StatusCode: 404}) {
		t.Error("404 should be not found")
	}
	if !IsNotFoundError(fmt.Errorf("wrap: %w", &APIError{StatusCode: 400, Fault: "itemNotFoundFault"})) {
		t.Error("itemNotFoundFault should be not found")
	}
	if IsNotFoundError(&APIError{StatusCode: 500}) {
		t.Error("500 should not be not found")
	}
	if IsNotFoundError(errors.New("404")) {
		t.Error("plain error should not be not found")
	}
}

func TestIsAuthError(t *testing.T) {
	for _, status := range []int{401, 403} {
		if !IsAuthError(&APIError{StatusCode: status}) {
			t.Errorf("%d should be an auth error", status)
		}
	}
	if IsAuthError(&APIError{StatusCode: 404}) {
		t.Error("404 should not be an auth error")
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	err := fmt.Errorf("outer: %w", &TransportError{Method: "GET", URL: "https://x", Err: inner})
	if !IsTransportError(err) {
		t.Error("should be a transport error")
	}
	if !errors.Is(err, inner) {
		t.Error("should unwrap to inner error")
	}
	if IsTransportError(&APIError{StatusCode: 500}) {
		t.Error("API error is not a transport error")
	}
}

func TestDecodeErrorUnwrap(t *testing.T) {
	err := &DecodeError{Body: "x", Err: errNotObject}
	if !IsDecodeError(err) {
		t.Error("should be a decode error")
	}
	if !errors.Is(err, errNotObject) {
		t.Error("should unwrap to cause")
	}
}

func TestNewAPIErrorMessage(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		header    string
		wantMsg   string
		wantFault string
	}{
		{"message key", `{"message":"bad size"}`, "", "bad size", ""},
		{"fault with details", `{"badRequestFault":{"message":"Invalid","details":"size must be positive"}}`, "", "Invalid: size must be positive", "badRequestFault"},
		{"fault without object", `{"unauthorizedFault":"nope"}`, "", redactedBody, "unauthorizedFault"},
		{"header overrides body", `{"message":"body"}`, "header message", "header message", ""},
		{"non json", `internal error`, "", redactedBody, ""},
		{"empty", ``, "", redactedBody, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.header != "" {
				header.Set("X-Error-Message", tt.header)
			}
			header.Set("X-Request-Id", " req-1 ")
			err := newAPIError(400, header, tt.body)
			if err.Body != tt.wantMsg {
				t.Errorf("Body = %q, want %q", err.Body, tt.wantMsg)
			}
			if err.Fault != tt.wantFault {
				t.Errorf("Fault = %q, want %q", err.Fault, tt.wantFault)
			}
			if err.RequestID != "req-1" {
				t.Errorf("RequestID = %q", err.RequestID)
			}
		})
	}
}
