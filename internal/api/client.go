// Package api talks to the sports-analytics GraphQL endpoint. One
// client, one token, one request in flight at a time; no retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rangepull/internal/auth"
	"rangepull/internal/browser"
	"rangepull/internal/inventory"
	"rangepull/internal/tokencache"
)

// Client executes GraphQL requests with whichever bearer token is
// currently attached. Collaborators are explicit handles, never ambient
// state.
type Client struct {
	endpoint  string
	userAgent string
	httpc     *http.Client
	token     string

	Cache      *tokencache.Cache
	Auth       *auth.Authenticator
	NewSession func() (browser.Session, error)
	Log        *slog.Logger
}

func New(endpoint, userAgent string, timeout time.Duration) *Client {
	return &Client{
		endpoint:  endpoint,
		userAgent: userAgent,
		httpc:     &http.Client{Timeout: timeout},
	}
}

// SetToken attaches a bearer token for subsequent calls.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the currently attached bearer token, if any.
func (c *Client) Token() string { return c.token }

func (c *Client) log() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Execute runs one GraphQL round trip. It distinguishes the error
// classes the caller cares about: no token attached, network failure,
// non-2xx response (with the diagnostic body surfaced), and
// GraphQL-level errors.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	if c.token == "" {
		return nil, ErrNotAuthenticated
	}
	if variables == nil {
		variables = map[string]any{}
	}

	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{Status: resp.StatusCode, Body: string(body)}
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			msgs[i] = e.Message
		}
		return gqlResp.Data, fmt.Errorf("graphql: %s", strings.Join(msgs, "; "))
	}
	return gqlResp.Data, nil
}

// TestConnection verifies the attached token with a trivial
// introspection query.
func (c *Client) TestConnection(ctx context.Context) bool {
	data, err := c.Execute(ctx, queryIntrospection, nil)
	if err != nil {
		return false
	}
	var probe struct {
		Schema *struct {
			QueryType struct {
				Name string `json:"name"`
			} `json:"queryType"`
		} `json:"__schema"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Schema != nil
}

// Authenticate attaches a usable token for username, preferring the
// cache fast-path and falling back to the browser PKCE flow. It returns
// the username the token was stored under, which may come from the
// intercepted login traffic when the caller supplied none.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	if username != "" {
		if rec, ok := c.Cache.Lookup(username); ok {
			c.log().Info("testing saved token", "user", username)
			c.SetToken(rec.Token)
			if c.TestConnection(ctx) {
				return username, nil
			}
			c.log().Info("saved token no longer valid, falling back to browser login", "user", username)
			c.SetToken("")
		}
	}

	sess, err := c.NewSession()
	if err != nil {
		return "", fmt.Errorf("launch browser session: %w", err)
	}
	result, err := c.Auth.Login(ctx, sess, username, password)
	if err != nil {
		return "", err
	}

	c.SetToken(result.Token)
	if !c.TestConnection(ctx) {
		c.SetToken("")
		return "", ErrAuthRejected
	}

	name := username
	if name == "" {
		name = result.Email
	}
	if name != "" {
		if err := c.Cache.Save(name, result.Token); err != nil {
			c.log().Warn("could not persist token", "user", name, "error", err)
		}
	}
	return name, nil
}

// Activity is one remote activity record.
type Activity struct {
	ID       string `json:"id"`
	Time     string `json:"time"`
	Kind     string `json:"kind"`
	IsHidden bool   `json:"isHidden"`
}

// KindRangePractice is the only activity kind this tool exports.
const KindRangePractice = "RANGE_PRACTICE"

// ActivityList fetches the caller's activities, newest first as the
// service returns them. limit <= 0 means everything.
func (c *Client) ActivityList(ctx context.Context, limit int) ([]Activity, error) {
	data, err := c.Execute(ctx, queryActivityList, nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Me struct {
			Activities struct {
				Items []Activity `json:"items"`
			} `json:"activities"`
		} `json:"me"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode activity list: %w", err)
	}
	items := resp.Me.Activities.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// RangePracticeActivities is ActivityList filtered to the kind that has
// shot data.
func (c *Client) RangePracticeActivities(ctx context.Context, limit int) ([]Activity, error) {
	all, err := c.ActivityList(ctx, 0)
	if err != nil {
		return nil, err
	}
	var out []Activity
	for _, a := range all {
		if a.Kind == KindRangePractice {
			out = append(out, a)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Shot is one stroke of an activity after normalization.
type Shot struct {
	Club        *string        `json:"club"`
	BayName     string         `json:"bayName"`
	Time        string         `json:"time"`
	Measurement map[string]any `json:"measurement"`
}

// FetchShots retrieves and normalizes one activity's strokes for the
// given measurement variant.
func (c *Client) FetchShots(ctx context.Context, activityID string, ball inventory.BallType) ([]Shot, error) {
	measurementType := "PRO_BALL_MEASUREMENT"
	if ball == inventory.BallRange {
		measurementType = "SITE_MEASUREMENT"
	}

	data, err := c.Execute(ctx, queryActivityShots, map[string]any{
		"id":              activityID,
		"measurementType": measurementType,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Node struct {
			Strokes []Shot `json:"strokes"`
		} `json:"node"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode shots: %w", err)
	}

	shots := resp.Node.Strokes
	for i := range shots {
		shots[i].Measurement = normalizeMeasurement(shots[i].Measurement)
	}
	return shots, nil
}

// Bay is one hitting bay at a facility.
type Bay struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number int    `json:"number"`
	Status string `json:"status"`
}

// RangeOverview describes the facilities and bays visible to the user.
type RangeOverview struct {
	Facilities []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Bays []Bay  `json:"bays"`
	} `json:"facilities"`
	CurrentBay    *Bay  `json:"currentBay"`
	AvailableBays []Bay `json:"availableBays"`
}

// FetchRangeOverview pulls the facility/bay listing.
func (c *Client) FetchRangeOverview(ctx context.Context) (*RangeOverview, error) {
	data, err := c.Execute(ctx, queryRangeOverview, nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Range RangeOverview `json:"range"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode range overview: %w", err)
	}
	return &resp.Range, nil
}
