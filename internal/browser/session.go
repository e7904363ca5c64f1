// Package browser defines the narrow contract the authentication flow
// needs from an instrumented browser, plus a chromedp-backed
// implementation. The auth code depends only on Session, so tests can
// substitute a fake and no other package touches the driver.
package browser

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrWaitTimeout is returned when a bounded wait elapses without the
// element or request showing up.
var ErrWaitTimeout = errors.New("browser: wait timed out")

// Request is one observed outbound HTTP request.
type Request struct {
	URL     string
	Headers map[string]string
	Body    string
}

// Header does a case-insensitive single-header lookup.
func (r Request) Header(name string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Session is the instrumented browser the authenticator drives.
// Close must be safe to call on every exit path, repeatedly.
type Session interface {
	// Navigate loads url in the browser.
	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until the element matching the CSS selector is
	// rendered, or the timeout elapses (ErrWaitTimeout).
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// WaitRequest invokes match on every observed outbound request,
	// including ones captured before the call, and returns the first
	// match. ErrWaitTimeout after timeout.
	WaitRequest(ctx context.Context, match func(Request) bool, timeout time.Duration) (Request, error)

	// Requests snapshots every request observed so far.
	Requests() []Request

	// Close tears the browser down. Idempotent.
	Close() error
}

// CredentialTyper is implemented by sessions that can fill the identity
// provider's login form. Optional: the flow falls back to interactive
// login when a session does not support it.
type CredentialTyper interface {
	TypeCredentials(ctx context.Context, email, password string) error
}
