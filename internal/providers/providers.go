package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

const (
	// FacebookProviderSlug identifies the Facebook provider
	FacebookProviderSlug = "facebook"
	// InstagramProviderSlug identifies the Instagram provider
	InstagramProviderSlug = "instagram"
	// LinkedInProviderSlug identifies the LinkedIn provider
	LinkedInProviderSlug = "linkedin"
	// XProviderSlug identifies the x (twitter) provider
	XProviderSlug = "x"
	// YouTubeProviderSlug identifies the YouTube provider
	YouTubeProviderSlug = "youtube"
)

var (
	// ErrUnknownProvider denotes a provider slug outside the supported set.
	// Hitting it is a caller bug, not a recoverable condition.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnauthenticated denotes a missing session credential where one is
	// required before any network call is made.
	ErrUnauthenticated = errors.New("no session credential")

	// ErrMissingCode denotes an oauth2 callback that carried neither an
	// authorization code nor a provider error.
	ErrMissingCode = errors.New("callback missing authorization code")

	// ErrIncompleteCallback denotes a three-legged callback missing
	// oauth_token or oauth_verifier.
	ErrIncompleteCallback = errors.New("incomplete three-legged callback")

	// ErrMissingTransportSecret denotes a three-legged callback that arrived
	// without a retrievable request-token secret.
	ErrMissingTransportSecret = errors.New("missing transport secret")

	// ErrStateMismatch denotes a callback whose state nonce did not match the
	// one issued for the attempt.
	ErrStateMismatch = errors.New("state mismatch")
)

// DeclinedError is returned when the provider explicitly reported an error in
// the callback, e.g. the user denied the authorization dialog. Distinct from
// a malformed callback.
type DeclinedError struct {
	Code string
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("provider declined: %s", e.Code)
}

// AuthorizationRedirect is the outcome of building an authorization request.
type AuthorizationRedirect struct {
	// URL is the provider authorization URL the browser is sent to.
	URL string

	// Secret is the request-token secret that must travel to the callback in
	// the transport cookie, never in a URL. Empty for oauth2-code providers.
	Secret string

	// State is the CSRF nonce embedded in URL, empty for providers whose
	// flow does not carry one.
	State string
}

// CallbackSecrets carries the values recovered from the transport cookies at
// callback time.
type CallbackSecrets struct {
	TransportSecret string
	State           string
}

// Artifacts are the validated authorization artifacts forwarded to the
// backend exchange. Exactly one shape is populated per variant.
type Artifacts struct {
	// oauth2-code
	Code string

	// oauth1-three-legged
	OAuthToken       string
	OAuthVerifier    string
	OAuthTokenSecret string
}

// Provider is an interface exposing the per-provider halves of a linking
// attempt: building the outbound authorization redirect and validating the
// inbound callback.
type Provider interface {
	Data() *ProviderData
	BuildAuthorizationRedirect(ctx context.Context, sessionCredential string) (*AuthorizationRedirect, error)
	ParseCallback(query url.Values, secrets CallbackSecrets) (*Artifacts, error)
}

// parseOAuth2Callback implements the shared oauth2-code callback rules: a
// provider-supplied error always wins, then a missing code is malformed.
func parseOAuth2Callback(query url.Values) (*Artifacts, error) {
	if errorString := query.Get("error"); errorString != "" {
		return nil, &DeclinedError{Code: errorString}
	}

	code := query.Get("code")
	if code == "" {
		return nil, ErrMissingCode
	}

	return &Artifacts{Code: code}, nil
}
