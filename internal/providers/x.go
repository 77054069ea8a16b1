package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"
)

// XProvider implements the Provider interface for x (twitter), the one
// OAuth1.0a three-legged flow. The authorization URL cannot be built locally:
// the backend performs the request-token step against the platform and hands
// back the URL plus the request-token secret.
type XProvider struct {
	*ProviderData

	// RequestTokenURL is the backend endpoint that performs the
	// request-token step.
	RequestTokenURL *url.URL

	httpClient *http.Client
}

// NewXProvider returns a new XProvider pointed at the backend's
// request-token endpoint.
func NewXProvider(p *ProviderData, backendURL *url.URL) (*XProvider, error) {
	p.ProviderName = "X"
	p.ProviderSlug = XProviderSlug
	p.Variant = VariantOAuth1ThreeLegged
	p.ExchangePath = "/oauth/x/callback"

	requestTokenURL := backendURL.ResolveReference(&url.URL{Path: "/oauth/x/request_token"})
	p.SignInURL = requestTokenURL

	return &XProvider{
		ProviderData:    p,
		RequestTokenURL: requestTokenURL,
		// the backend enforces no deadline of its own here, so set one
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type requestTokenResponse struct {
	AuthURL          string `json:"authUrl"`
	OAuthTokenSecret string `json:"oauthTokenSecret"`
}

// BuildAuthorizationRedirect asks the backend for a request token. A session
// credential is required before any network call is made; the returned secret
// must travel to the callback in the transport cookie, never in a URL.
func (p *XProvider) BuildAuthorizationRedirect(ctx context.Context, sessionCredential string) (*AuthorizationRedirect, error) {
	if sessionCredential == "" {
		return nil, ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.RequestTokenURL.String(), bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sessionCredential))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	body, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request token: got %d from %q", resp.StatusCode, p.RequestTokenURL.String())
	}

	var jsonResponse requestTokenResponse
	err = json.Unmarshal(body, &jsonResponse)
	if err != nil {
		return nil, err
	}

	if jsonResponse.AuthURL == "" || jsonResponse.OAuthTokenSecret == "" {
		return nil, fmt.Errorf("request token: incomplete response from %q", p.RequestTokenURL.String())
	}

	return &AuthorizationRedirect{
		URL:    jsonResponse.AuthURL,
		Secret: jsonResponse.OAuthTokenSecret,
	}, nil
}

// ParseCallback requires oauth_token and oauth_verifier from the query string
// and the request-token secret recovered from the transport cookie. All three
// must be present to proceed to exchange.
func (p *XProvider) ParseCallback(query url.Values, secrets CallbackSecrets) (*Artifacts, error) {
	oauthToken := query.Get("oauth_token")
	oauthVerifier := query.Get("oauth_verifier")
	if oauthToken == "" || oauthVerifier == "" {
		return nil, ErrIncompleteCallback
	}

	if secrets.TransportSecret == "" {
		return nil, ErrMissingTransportSecret
	}

	return &Artifacts{
		OAuthToken:       oauthToken,
		OAuthVerifier:    oauthVerifier,
		OAuthTokenSecret: secrets.TransportSecret,
	}, nil
}

// SetHTTPClient overrides the http client used for the request-token step.
func (p *XProvider) SetHTTPClient(client *http.Client) {
	p.httpClient = client
}
