package auth

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rangepull/internal/browser"
)

// fakeSession is a scripted browser.Session that records lifecycle calls.
type fakeSession struct {
	requests   []browser.Request
	navigated  string
	closed     int
	markerErr  error
	typedEmail string
	typedPass  string
}

func (f *fakeSession) Navigate(ctx context.Context, u string) error {
	f.navigated = u
	return nil
}

func (f *fakeSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return f.markerErr
}

func (f *fakeSession) WaitRequest(ctx context.Context, match func(browser.Request) bool, timeout time.Duration) (browser.Request, error) {
	for _, r := range f.requests {
		if match(r) {
			return r, nil
		}
	}
	return browser.Request{}, browser.ErrWaitTimeout
}

func (f *fakeSession) Requests() []browser.Request { return f.requests }

func (f *fakeSession) Close() error {
	f.closed++
	return nil
}

// typingSession additionally implements browser.CredentialTyper.
type typingSession struct{ fakeSession }

func (f *typingSession) TypeCredentials(ctx context.Context, email, password string) error {
	f.typedEmail = email
	f.typedPass = password
	return nil
}

func newAuthenticator() *Authenticator {
	return &Authenticator{
		ClientID:     "client-1",
		RedirectURI:  "https://portal.example.com/callback",
		AuthorizeURL: "https://login.example.com/connect/authorize",
		Scopes:       []string{"openid", "profile"},
		LoginTimeout: 50 * time.Millisecond,
	}
}

func TestURLCarriesPKCEParameters(t *testing.T) {
	a := newAuthenticator()
	raw := a.URL("the-challenge")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "client-1", q.Get("client_id"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "the-challenge", q.Get("code_challenge"))
	require.Equal(t, "S256", q.Get("code_challenge_method"))
	require.Equal(t, "openid profile", q.Get("scope"))
}

func TestLoginRecoversBearerToken(t *testing.T) {
	sess := &fakeSession{requests: []browser.Request{
		{URL: "https://cdn.example.com/app.js"},
		{URL: "https://api.example.com/graphql", Headers: map[string]string{"Authorization": "Bearer tok-123"}},
	}}

	a := newAuthenticator()
	res, err := a.Login(context.Background(), sess, "", "")
	require.NoError(t, err)
	require.Equal(t, "tok-123", res.Token)
	require.Equal(t, 1, sess.closed, "session must be released on success")
	require.True(t, strings.HasPrefix(sess.navigated, a.AuthorizeURL+"?"))
}

func TestLoginCaseInsensitiveAuthorizationHeader(t *testing.T) {
	sess := &fakeSession{requests: []browser.Request{
		{URL: "https://api.example.com/graphql", Headers: map[string]string{"authorization": "Bearer lower"}},
	}}

	res, err := newAuthenticator().Login(context.Background(), sess, "", "")
	require.NoError(t, err)
	require.Equal(t, "lower", res.Token)
}

func TestLoginTimesOutWithoutBearer(t *testing.T) {
	sess := &fakeSession{requests: []browser.Request{
		{URL: "https://cdn.example.com/app.js"},
		{URL: "https://api.example.com/other", Headers: map[string]string{"Authorization": "Basic abc"}},
	}}

	_, err := newAuthenticator().Login(context.Background(), sess, "", "")
	require.ErrorIs(t, err, ErrAuthTimeout)
	require.Equal(t, 1, sess.closed, "session must be released on timeout too")
}

func TestLoginExtractsEmailFromFormBody(t *testing.T) {
	sess := &fakeSession{requests: []browser.Request{
		{URL: "https://login.example.com/signin", Body: "email=golfer%40example.com&password=secret"},
		{URL: "https://api.example.com/graphql", Headers: map[string]string{"Authorization": "Bearer tok"}},
	}}

	res, err := newAuthenticator().Login(context.Background(), sess, "", "")
	require.NoError(t, err)
	require.Equal(t, "golfer@example.com", res.Email)
}

func TestLoginTypesCredentialsWhenSupported(t *testing.T) {
	sess := &typingSession{fakeSession{requests: []browser.Request{
		{URL: "https://api.example.com/graphql", Headers: map[string]string{"Authorization": "Bearer tok"}},
	}}}

	_, err := newAuthenticator().Login(context.Background(), sess, "golfer@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "golfer@example.com", sess.typedEmail)
	require.Equal(t, "secret", sess.typedPass)
}

func TestLoginIgnoresMarkerFailure(t *testing.T) {
	sess := &fakeSession{
		markerErr: browser.ErrWaitTimeout,
		requests: []browser.Request{
			{URL: "https://api.example.com/graphql", Headers: map[string]string{"Authorization": "Bearer tok"}},
		},
	}

	res, err := newAuthenticator().Login(context.Background(), sess, "", "")
	require.NoError(t, err)
	require.Equal(t, "tok", res.Token)
}
