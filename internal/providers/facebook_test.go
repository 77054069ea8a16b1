package providers

import (
	"context"
	"net/url"
	"testing"

	"github.com/schedulr/linker/internal/pkg/testutil"
)

func newTestFacebookProvider(t *testing.T) *FacebookProvider {
	t.Helper()
	p, err := NewFacebookProvider(&ProviderData{
		ClientID:    "fb-client-id",
		RedirectURI: "https://linker.example.com/connect/facebook/callback",
	})
	testutil.Ok(t, err)
	return p
}

// requireParamsOnce parses a raw URL and asserts that each expected query
// parameter appears exactly once with the expected value.
func requireParamsOnce(t *testing.T, rawURL string, expected map[string]string) url.Values {
	t.Helper()
	u, err := url.Parse(rawURL)
	testutil.Ok(t, err)

	params, err := url.ParseQuery(u.RawQuery)
	testutil.Ok(t, err)

	for key, value := range expected {
		testutil.Equal(t, 1, len(params[key]))
		testutil.Equal(t, value, params.Get(key))
	}
	return params
}

func TestFacebookSignInURL(t *testing.T) {
	p := newTestFacebookProvider(t)

	redirect, err := p.BuildAuthorizationRedirect(context.Background(), "")
	testutil.Ok(t, err)
	testutil.Equal(t, "", redirect.Secret)
	testutil.Equal(t, "", redirect.State)

	u, err := url.Parse(redirect.URL)
	testutil.Ok(t, err)
	testutil.Equal(t, "www.facebook.com", u.Host)
	testutil.Equal(t, "/v21.0/dialog/oauth", u.Path)

	requireParamsOnce(t, redirect.URL, map[string]string{
		"client_id":     "fb-client-id",
		"redirect_uri":  "https://linker.example.com/connect/facebook/callback",
		"response_type": "code",
		"scope":         "pages_show_list,pages_read_engagement,pages_manage_posts,publish_video",
	})
}

func TestInstagramSignInURL(t *testing.T) {
	p, err := NewInstagramProvider(&ProviderData{
		ClientID:    "ig-client-id",
		RedirectURI: "https://linker.example.com/connect/instagram/callback",
	})
	testutil.Ok(t, err)
	testutil.Equal(t, "Instagram", p.ProviderName)
	testutil.Equal(t, InstagramProviderSlug, p.ProviderSlug)
	testutil.Equal(t, "/api/social/instagram/callback", p.ExchangePath)

	redirect, err := p.BuildAuthorizationRedirect(context.Background(), "")
	testutil.Ok(t, err)

	u, err := url.Parse(redirect.URL)
	testutil.Ok(t, err)
	testutil.Equal(t, "www.facebook.com", u.Host)
	testutil.Equal(t, "/v21.0/dialog/oauth", u.Path)

	requireParamsOnce(t, redirect.URL, map[string]string{
		"client_id":     "ig-client-id",
		"response_type": "code",
		"scope":         "instagram_basic,instagram_content_publish,pages_show_list,pages_read_engagement",
	})
}

func TestOAuth2ParseCallback(t *testing.T) {
	testCases := []struct {
		name          string
		query         url.Values
		expectedCode  string
		expectedError error
		declinedCode  string
	}{
		{
			name:         "code present",
			query:        url.Values{"code": {"abc123"}},
			expectedCode: "abc123",
		},
		{
			name:         "provider declined",
			query:        url.Values{"error": {"access_denied"}, "error_reason": {"user_denied"}},
			declinedCode: "access_denied",
		},
		{
			name:         "provider declined wins over code",
			query:        url.Values{"error": {"access_denied"}, "code": {"abc123"}},
			declinedCode: "access_denied",
		},
		{
			name:          "missing code with no error is malformed",
			query:         url.Values{"foo": {"bar"}},
			expectedError: ErrMissingCode,
		},
		{
			name:          "empty query is malformed",
			query:         url.Values{},
			expectedError: ErrMissingCode,
		},
	}

	p := newTestFacebookProvider(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			artifacts, err := p.ParseCallback(tc.query, CallbackSecrets{})
			switch {
			case tc.declinedCode != "":
				declined, ok := err.(*DeclinedError)
				testutil.Assert(t, ok, "expected DeclinedError, got %v", err)
				testutil.Equal(t, tc.declinedCode, declined.Code)
			case tc.expectedError != nil:
				testutil.Equal(t, tc.expectedError, err)
			default:
				testutil.Ok(t, err)
				testutil.Equal(t, tc.expectedCode, artifacts.Code)
			}
		})
	}
}
