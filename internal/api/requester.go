package api

import (
	"context"
	"net/http"
)

// Requester is the transport surface the resource services depend on.
//
// Do returns the raw response and leaves status handling to the caller.
// Fetch reads the body and turns 4xx/5xx responses into *APIError.
type Requester interface {
	Do(ctx context.Context, r Request) (*http.Response, error)
	Fetch(ctx context.Context, r Request) (*Response, error)
}
