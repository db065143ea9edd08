package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

const redactedBody = "API request failed (response body redacted for security)"

// APIError represents an error response from the API
type APIError struct {
	StatusCode int
	Body       string
	Fault      string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Fault != "" {
		return fmt.Sprintf("API error (status %d, %s): %s", e.StatusCode, e.Fault, e.Body)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// TransportError wraps a failure to complete the HTTP exchange.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: request failed: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response body that is not the expected JSON object.
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unexpected API response format (JSON decode failed): %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsNotFoundError checks if the error indicates a resource was not found.
func IsNotFoundError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound || apiErr.Fault == "itemNotFoundFault"
	}
	return false
}

// IsAuthError reports 401/403 responses, which is how the API rejects a bad
// signature or a stale timestamp.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// IsTransportError checks if the request never produced a response.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsDecodeError checks if a response body could not be decoded.
func IsDecodeError(err error) bool {
	var e *DecodeError
	return errors.As(err, &e)
}

func newAPIError(status int, header http.Header, body string) *APIError {
	fault, msg := faultFromBody(body)
	if hdr := strings.TrimSpace(header.Get("X-Error-Message")); hdr != "" {
		msg = hdr
	}
	if msg == "" {
		msg = redactedBody
	}
	return &APIError{
		StatusCode: status,
		Body:       msg,
		Fault:      fault,
		RequestID:  requestIDFromHeader(header),
	}
}

func requestIDFromHeader(header http.Header) string {
	if header == nil {
		return ""
	}
	return strings.TrimSpace(header.Get("X-Request-Id"))
}

// faultFromBody extracts the fault name and message from bodies shaped like
// {"itemNotFoundFault":{"code":404,"message":"..."}} or {"message":"..."}.
// Anything else is withheld so credentials echoed by proxies never reach logs.
func faultFromBody(body string) (string, string) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return "", ""
	}
	if msg, ok := doc["message"].(string); ok {
		return "", msg
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !strings.HasSuffix(k, "Fault") {
			continue
		}
		inner, ok := doc[k].(map[string]any)
		if !ok {
			return k, ""
		}
		msg, _ := inner["message"].(string)
		if details, ok := inner["details"].(string); ok && details != "" {
			if msg == "" {
				msg = details
			} else {
				msg = msg + ": " + details
			}
		}
		return k, msg
	}
	return "", ""
}
