package providers

import (
	"context"
	"net/url"
	"testing"

	"github.com/schedulr/linker/internal/pkg/testutil"
)

func TestYouTubeSignInURL(t *testing.T) {
	p, err := NewYouTubeProvider(&ProviderData{
		ClientID:    "yt-client-id",
		RedirectURI: "https://linker.example.com/connect/youtube/callback",
	})
	testutil.Ok(t, err)

	redirect, err := p.BuildAuthorizationRedirect(context.Background(), "")
	testutil.Ok(t, err)
	testutil.Equal(t, "", redirect.Secret)
	testutil.Equal(t, "", redirect.State)

	u, err := url.Parse(redirect.URL)
	testutil.Ok(t, err)
	testutil.Equal(t, "accounts.google.com", u.Host)
	testutil.Equal(t, "/o/oauth2/v2/auth", u.Path)

	params := requireParamsOnce(t, redirect.URL, map[string]string{
		"client_id":     "yt-client-id",
		"redirect_uri":  "https://linker.example.com/connect/youtube/callback",
		"response_type": "code",
		"scope":         "https://www.googleapis.com/auth/youtube.upload https://www.googleapis.com/auth/youtube.readonly",
		"access_type":   "offline",
		"prompt":        "consent",
	})

	// no CSRF state is carried on this flow
	testutil.Equal(t, 0, len(params["state"]))
}

func TestYouTubeScopeOverride(t *testing.T) {
	p, err := NewYouTubeProvider(&ProviderData{
		ClientID:    "yt-client-id",
		RedirectURI: "https://linker.example.com/connect/youtube/callback",
		Scopes:      []string{"https://www.googleapis.com/auth/youtube"},
	})
	testutil.Ok(t, err)

	redirect, err := p.BuildAuthorizationRedirect(context.Background(), "")
	testutil.Ok(t, err)

	requireParamsOnce(t, redirect.URL, map[string]string{
		"scope": "https://www.googleapis.com/auth/youtube",
	})
}
