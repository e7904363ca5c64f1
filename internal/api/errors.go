package api

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated means a query was attempted before any bearer
// token was attached.
var ErrNotAuthenticated = errors.New("api: not authenticated, login first")

// ErrAuthRejected means the remote service refused even a freshly
// recovered token.
var ErrAuthRejected = errors.New("api: remote service rejected the token")

// TransportError wraps a network-level failure reaching the endpoint.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("api: transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response. Body carries whatever diagnostic
// payload the service returned, since 4xx/5xx responses often include
// useful JSON.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	body := e.Body
	if len(body) > 500 {
		body = body[:500]
	}
	return fmt.Sprintf("api: server returned %d: %s", e.Status, body)
}
