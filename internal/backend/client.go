// Package backend implements the client half of the token-store backend
// contract: one POST per linking attempt, forwarding validated authorization
// artifacts to the backend's per-provider callback endpoint.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/schedulr/linker/internal/providers"
)

// DefaultTimeout bounds the exchange call. The backend contract gives no
// deadline of its own, so a stalled exchange must still resolve to an
// unreachable error rather than hang.
const DefaultTimeout = 10 * time.Second

// ExchangeFailedError is returned when the backend answered with a non-2xx
// status. Status and Body are for server-side diagnostics only and must never
// reach a redirect URL.
type ExchangeFailedError struct {
	Status int
	Body   []byte
}

func (e *ExchangeFailedError) Error() string {
	return fmt.Sprintf("backend exchange failed: got %d", e.Status)
}

// UnreachableError is returned when the exchange never produced an HTTP
// response: timeout, DNS failure, connection reset. Kept distinct from
// ExchangeFailedError so the two can be telemetered separately.
type UnreachableError struct {
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("backend unreachable: %s", e.Err.Error())
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// Client talks to the backend token store.
type Client struct {
	BaseURL *url.URL

	httpClient *http.Client
}

// NewClient returns a Client for the backend at baseURL.
func NewClient(baseURL *url.URL) *Client {
	return &Client{
		BaseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// SetHTTPClient overrides the http client used for exchange calls.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

type exchangePayload struct {
	Code string `json:"code,omitempty"`

	OAuthToken       string `json:"oauth_token,omitempty"`
	OAuthVerifier    string `json:"oauth_verifier,omitempty"`
	OAuthTokenSecret string `json:"oauth_token_secret,omitempty"`
}

// Exchange posts the artifacts of a validated callback to the backend's
// exchange path for the provider, authenticated as the linking user. It is
// called at most once per attempt and never retried; a failed attempt is
// terminal and the user re-initiates from the dashboard.
func (c *Client) Exchange(ctx context.Context, exchangePath string, artifacts *providers.Artifacts, sessionCredential string) error {
	payload, err := json.Marshal(exchangePayload{
		Code:             artifacts.Code,
		OAuthToken:       artifacts.OAuthToken,
		OAuthVerifier:    artifacts.OAuthVerifier,
		OAuthTokenSecret: artifacts.OAuthTokenSecret,
	})
	if err != nil {
		return err
	}

	exchangeURL := c.BaseURL.ResolveReference(&url.URL{Path: exchangePath})
	req, err := http.NewRequestWithContext(ctx, "POST", exchangeURL.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sessionCredential))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UnreachableError{Err: err}
	}

	body, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return &UnreachableError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ExchangeFailedError{Status: resp.StatusCode, Body: body}
	}

	return nil
}
