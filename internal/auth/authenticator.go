// Package auth runs the PKCE authorization-code flow through an
// instrumented browser session and recovers the bearer token from the
// traffic the logged-in portal generates.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"rangepull/internal/browser"
)

// ErrAuthTimeout means the browser flow finished its wait without ever
// observing an authorized request. The caller may retry from scratch.
var ErrAuthTimeout = errors.New("auth: no authorized request observed before timeout")

// landingMarker is the element the portal renders once login completes.
const landingMarker = "#ga4-activities-card"

// Authenticator drives one login attempt. It owns no browser; each call
// to Login receives a fresh session and is guaranteed to release it.
type Authenticator struct {
	ClientID     string
	RedirectURI  string
	AuthorizeURL string
	Scopes       []string
	LoginTimeout time.Duration

	// Marker overrides the landing-page element to wait for.
	Marker string

	Log *slog.Logger
}

// Result is a recovered token plus the best-effort identity label pulled
// from the login traffic.
type Result struct {
	Token string
	Email string
}

// URL builds the authorization URL for a given code challenge.
func (a *Authenticator) URL(challenge string) string {
	params := url.Values{
		"client_id":             {a.ClientID},
		"redirect_uri":          {a.RedirectURI},
		"response_type":         {"code"},
		"scope":                 {strings.Join(a.Scopes, " ")},
		"code_challenge":        {challenge},
		"code_challenge_method": {"S256"},
	}
	return a.AuthorizeURL + "?" + params.Encode()
}

// Login navigates the session through the PKCE flow and waits for the
// first intercepted request carrying a bearer token. The session is
// closed on every exit path.
func (a *Authenticator) Login(ctx context.Context, sess browser.Session, email, password string) (Result, error) {
	defer sess.Close()

	log := a.Log
	if log == nil {
		log = slog.Default()
	}

	verifier, err := GenerateVerifier()
	if err != nil {
		return Result{}, err
	}
	authURL := a.URL(Challenge(verifier))

	if err := sess.Navigate(ctx, authURL); err != nil {
		return Result{}, fmt.Errorf("open authorization page: %w", err)
	}

	if email != "" && password != "" {
		if typer, ok := sess.(browser.CredentialTyper); ok {
			if err := typer.TypeCredentials(ctx, email, password); err != nil {
				// Not fatal: the user can still complete the form by hand
				// in a headful session.
				log.Warn("could not autofill login form", "error", err)
			}
		}
	}

	timeout := a.LoginTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	// The landing-page marker is only a liveness signal; the token comes
	// from the traffic, so the marker wait runs alongside the request
	// wait and its outcome is merely logged.
	markerDone := make(chan error, 1)
	go func() {
		sel := a.Marker
		if sel == "" {
			sel = landingMarker
		}
		markerDone <- sess.WaitVisible(ctx, sel, timeout)
	}()

	req, err := sess.WaitRequest(ctx, hasBearer, timeout)
	select {
	case merr := <-markerDone:
		if merr != nil {
			log.Debug("landing page marker never appeared", "error", merr)
		}
	default:
	}
	if err != nil {
		if errors.Is(err, browser.ErrWaitTimeout) {
			return Result{}, ErrAuthTimeout
		}
		return Result{}, fmt.Errorf("wait for authorized request: %w", err)
	}

	token := bearerToken(req)
	if token == "" {
		return Result{}, ErrAuthTimeout
	}

	result := Result{Token: token, Email: extractEmail(sess.Requests())}
	log.Info("token recovered from browser session", "email", result.Email)
	return result, nil
}

func hasBearer(r browser.Request) bool {
	return bearerToken(r) != ""
}

func bearerToken(r browser.Request) string {
	h := r.Header("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// extractEmail scans intercepted form bodies for the address the user
// logged in with. Purely best-effort: it labels the token cache entry
// when the caller did not supply a username.
func extractEmail(requests []browser.Request) string {
	for _, r := range requests {
		if r.Body == "" {
			continue
		}
		values, err := url.ParseQuery(r.Body)
		if err != nil {
			continue
		}
		for _, key := range []string{"email", "Email", "username", "Username"} {
			if v := values.Get(key); v != "" && strings.Contains(v, "@") {
				return v
			}
		}
	}
	return ""
}
