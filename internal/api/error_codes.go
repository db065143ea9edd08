package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

// ErrorCode represents machine-readable error codes for scripted callers.
type ErrorCode string

const (
	// ErrBadRequest indicates a malformed request (HTTP 400).
	ErrBadRequest ErrorCode = "bad_request"
	// ErrUnauthorized indicates a rejected or stale signature (HTTP 401/403).
	ErrUnauthorized ErrorCode = "unauthorized"
	// ErrForbidden indicates the key lacks access to the account (HTTP 403 with a fault).
	ErrForbidden ErrorCode = "forbidden"
	// ErrNotFound indicates the mailbox, domain or account does not exist (HTTP 404).
	ErrNotFound ErrorCode = "not_found"
	// ErrConflict indicates the mailbox already exists (HTTP 409).
	ErrConflict ErrorCode = "conflict"
	// ErrServerError indicates an internal server error (HTTP 5xx).
	ErrServerError ErrorCode = "server_error"
	// ErrTimeout indicates the request timed out.
	ErrTimeout ErrorCode = "timeout"
	// ErrNetwork indicates the request never reached the server.
	ErrNetwork ErrorCode = "network"
	// ErrDecode indicates the response body was not the expected JSON.
	ErrDecode ErrorCode = "decode_failed"
	// ErrUnknown indicates an unknown or unclassified error.
	ErrUnknown ErrorCode = "unknown"
)

// Suggestion returns a human-readable suggestion for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrUnauthorized:
		return "Check the API key pair with 'rsmail auth status' and that the system clock is correct"
	case ErrForbidden:
		return "Check that the API key has access to this customer account"
	case ErrNotFound:
		return "Verify the account number, domain and mailbox name"
	case ErrConflict:
		return "The mailbox already exists; use 'rsmail mailboxes edit'"
	case ErrBadRequest:
		return "Check the submitted fields"
	case ErrServerError:
		return "The server encountered an error; try again later"
	case ErrTimeout:
		return "The request timed out; raise --timeout or check connectivity"
	case ErrNetwork:
		return "Check network connectivity and the base URL"
	case ErrDecode:
		return "Request a JSON response with --format application/json"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 400:
		return ErrBadRequest
	case 401, 403:
		return ErrUnauthorized
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	default:
		if statusCode >= 500 && statusCode < 600 {
			return ErrServerError
		}
		return ErrUnknown
	}
}

// StructuredError provides machine-readable error information.
type StructuredError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// MarshalJSON implements custom JSON marshaling.
func (e *StructuredError) MarshalJSON() ([]byte, error) {
	type Alias StructuredError
	return json.Marshal((*Alias)(e))
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Suggestion: code.Suggestion(),
	}
}

// StructuredErrorFromAPIError converts an APIError to a StructuredError.
func StructuredErrorFromAPIError(apiErr *APIError) *StructuredError {
	code := ErrorCodeFromStatus(apiErr.StatusCode)
	// A 403 carrying an explicit fault is a permissions problem, not a bad signature.
	if apiErr.StatusCode == 403 && apiErr.Fault != "" && apiErr.Fault != "unauthorizedFault" {
		code = ErrForbidden
	}
	ctx := map[string]any{
		"status_code": apiErr.StatusCode,
	}
	if apiErr.Fault != "" {
		ctx["fault"] = apiErr.Fault
	}
	if apiErr.RequestID != "" {
		ctx["request_id"] = apiErr.RequestID
	}
	return &StructuredError{
		Code:       code,
		Message:    apiErr.Body,
		Suggestion: code.Suggestion(),
		Context:    ctx,
	}
}

// StructuredErrorFromError attempts to convert any error to a StructuredError.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return StructuredErrorFromAPIError(apiErr)
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return NewStructuredError(ErrDecode, decodeErr.Error())
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		code := ErrNetwork
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			code = ErrTimeout
		}
		se := NewStructuredError(code, transportErr.Error())
		se.Context = map[string]any{"method": transportErr.Method, "url": transportErr.URL}
		return se
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewStructuredError(ErrTimeout, err.Error())
	}

	return &StructuredError{
		Code:    ErrUnknown,
		Message: err.Error(),
	}
}
