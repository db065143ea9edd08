package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rackspace/rsmail-cli/internal/debug"
	"github.com/rackspace/rsmail-cli/internal/validation"
)

const (
	DefaultBaseURL = "https://api.emailsrvr.com/v0"
	DefaultTimeout = 30 * time.Second
	DefaultFormat  = "application/json"

	formContentType = "application/x-www-form-urlencoded"
)

// Client is the signed transport for the mailbox API.
//
// A Client holds only configuration; every call builds its own request, so one
// Client may be shared by concurrent goroutines.
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	UserAgent string

	// LegacyDeleteAsGet sends deletes as GET requests, matching older
	// integrations that never issued a real DELETE.
	LegacyDeleteAsGet bool

	// Now supplies the signing time. Defaults to time.Now.
	Now func() time.Time

	// RequestIDFunc tags debug log lines for one request.
	RequestIDFunc func() string

	creds             Credentials
	skipURLValidation bool
	validatedBaseURL  bool
	validateMu        sync.Mutex
}

// Request describes a single call. It is passed by value and never retained.
type Request struct {
	Method string
	Path   string
	Fields map[string]string
	Format string
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// Compile-time interface implementation check
var _ Requester = (*Client)(nil)

var validateBaseURL = validation.ValidateBaseURL

// New creates a client for baseURL signed with creds.
func New(baseURL string, creds Credentials) *Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12

	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}

	// Allow localhost URLs when RSMAIL_TESTING=1 is set (for integration tests)
	skipValidation := os.Getenv("RSMAIL_TESTING") == "1"

	return &Client{
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
		UserAgent: DefaultUserAgent,
		HTTP: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
		Now:               time.Now,
		RequestIDFunc:     uuid.NewString,
		creds:             creds,
		skipURLValidation: skipValidation,
	}
}

// Signer returns the signer matching this client's credentials and user agent.
func (c *Client) Signer() Signer {
	return Signer{Credentials: c.creds, UserAgent: c.UserAgent}
}

func (c *Client) ensureBaseURLValidated() error {
	c.validateMu.Lock()
	defer c.validateMu.Unlock()

	if c.validatedBaseURL || c.skipURLValidation {
		return nil
	}
	if err := validateBaseURL(c.BaseURL); err != nil {
		return fmt.Errorf("URL validation failed: %w", err)
	}
	c.validatedBaseURL = true
	return nil
}

func (c *Client) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Method returns the HTTP verb actually sent for method.
func (c *Client) Method(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == http.MethodDelete && c.LegacyDeleteAsGet {
		return http.MethodGet
	}
	return method
}

// URL joins the base URL and an API path.
func (c *Client) URL(path string) string {
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	return c.BaseURL + path
}

// NewRequest builds and signs the HTTP request for r without sending it.
func (c *Client) NewRequest(ctx context.Context, r Request) (*http.Request, error) {
	method := c.Method(r.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	hasForm := method == http.MethodPost || method == http.MethodPut
	if hasForm {
		body = strings.NewReader(EncodeForm(r.Fields))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(r.Path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	format := r.Format
	if format == "" {
		format = DefaultFormat
	}

	signer := c.Signer()
	req.Header.Set(SignatureHeader, signer.Sign(c.now()))
	req.Header.Set("User-Agent", signer.userAgent())
	req.Header.Set("Accept", format)
	if hasForm {
		req.Header.Set("Content-Type", formContentType)
	}
	return req, nil
}

// Do signs and sends r, returning the raw response. The status code is not
// inspected; the caller owns resp.Body.
func (c *Client) Do(ctx context.Context, r Request) (*http.Response, error) {
	if err := c.ensureBaseURLValidated(); err != nil {
		return nil, err
	}

	req, err := c.NewRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	var requestID string
	if c.RequestIDFunc != nil {
		requestID = c.RequestIDFunc()
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("request failed", "request_id", requestID, "method", req.Method, "url", req.URL.String(), "error", err)
		}
		return nil, &TransportError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "request_id", requestID, "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode, "duration", time.Since(start))
	}
	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path, format string) (*http.Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Format: format})
}

// Post performs a POST request with a form body.
func (c *Client) Post(ctx context.Context, path string, fields map[string]string, format string) (*http.Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Fields: fields, Format: format})
}

// Put performs a PUT request with a form body.
func (c *Client) Put(ctx context.Context, path string, fields map[string]string, format string) (*http.Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Fields: fields, Format: format})
}

// Delete performs a DELETE request (GET when LegacyDeleteAsGet is set).
func (c *Client) Delete(ctx context.Context, path, format string) (*http.Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Format: format})
}

// Raw sends r and returns the body whatever the status code.
func (c *Client) Raw(ctx context.Context, r Request) (string, error) {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return "", err
	}
	return ReadBody(resp)
}

// Fetch sends r and reads the whole body. Status codes of 400 and above
// produce an *APIError; the Response is still returned for inspection.
func (c *Client) Fetch(ctx context.Context, r Request) (*Response, error) {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return nil, err
	}
	body, err := ReadBody(resp)
	if err != nil {
		return nil, err
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	if resp.StatusCode >= 400 {
		return out, newAPIError(resp.StatusCode, resp.Header, body)
	}
	return out, nil
}

// ReadBody drains and closes resp.Body.
func ReadBody(resp *http.Response) (string, error) {
	if resp == nil || resp.Body == nil {
		return "", nil
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(data), nil
}

// EncodeForm renders fields as application/x-www-form-urlencoded.
func EncodeForm(fields map[string]string) string {
	values := make(url.Values, len(fields))
	for k, v := range fields {
		values.Set(k, v)
	}
	return values.Encode()
}
