package providers

import (
	"context"
	"net/url"
	"testing"

	"github.com/schedulr/linker/internal/pkg/testutil"
)

func newTestLinkedInProvider(t *testing.T) *LinkedInProvider {
	t.Helper()
	p, err := NewLinkedInProvider(&ProviderData{
		ClientID:    "li-client-id",
		RedirectURI: "https://linker.example.com/connect/linkedin/callback",
	})
	testutil.Ok(t, err)
	return p
}

func TestLinkedInSignInURL(t *testing.T) {
	p := newTestLinkedInProvider(t)

	redirect, err := p.BuildAuthorizationRedirect(context.Background(), "")
	testutil.Ok(t, err)

	u, err := url.Parse(redirect.URL)
	testutil.Ok(t, err)
	testutil.Equal(t, "www.linkedin.com", u.Host)
	testutil.Equal(t, "/oauth/v2/authorization", u.Path)

	params := requireParamsOnce(t, redirect.URL, map[string]string{
		"client_id":     "li-client-id",
		"redirect_uri":  "https://linker.example.com/connect/linkedin/callback",
		"response_type": "code",
		"scope":         "openid profile w_member_social",
	})

	// a fresh CSRF nonce rides along and is handed back for the cookie
	testutil.NotEqual(t, "", redirect.State)
	testutil.Equal(t, redirect.State, params.Get("state"))
}

func TestLinkedInStateIsFreshPerAttempt(t *testing.T) {
	p := newTestLinkedInProvider(t)

	first, err := p.BuildAuthorizationRedirect(context.Background(), "")
	testutil.Ok(t, err)
	second, err := p.BuildAuthorizationRedirect(context.Background(), "")
	testutil.Ok(t, err)

	testutil.NotEqual(t, first.State, second.State)
}

func TestLinkedInParseCallback(t *testing.T) {
	testCases := []struct {
		name          string
		query         url.Values
		secrets       CallbackSecrets
		expectedCode  string
		expectedError error
		declined      bool
	}{
		{
			name:         "valid callback with matching state",
			query:        url.Values{"code": {"abc123"}, "state": {"nonce"}},
			secrets:      CallbackSecrets{State: "nonce"},
			expectedCode: "abc123",
		},
		{
			name:          "state mismatch",
			query:         url.Values{"code": {"abc123"}, "state": {"evil"}},
			secrets:       CallbackSecrets{State: "nonce"},
			expectedError: ErrStateMismatch,
		},
		{
			name:          "missing state cookie",
			query:         url.Values{"code": {"abc123"}, "state": {"nonce"}},
			secrets:       CallbackSecrets{},
			expectedError: ErrStateMismatch,
		},
		{
			name:     "provider declined before state check",
			query:    url.Values{"error": {"user_cancelled_authorize"}},
			declined: true,
		},
		{
			name:          "missing code with matching state",
			query:         url.Values{"state": {"nonce"}},
			secrets:       CallbackSecrets{State: "nonce"},
			expectedError: ErrMissingCode,
		},
	}

	p := newTestLinkedInProvider(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			artifacts, err := p.ParseCallback(tc.query, tc.secrets)
			switch {
			case tc.declined:
				_, ok := err.(*DeclinedError)
				testutil.Assert(t, ok, "expected DeclinedError, got %v", err)
			case tc.expectedError != nil:
				testutil.Equal(t, tc.expectedError, err)
			default:
				testutil.Ok(t, err)
				testutil.Equal(t, tc.expectedCode, artifacts.Code)
			}
		})
	}
}
