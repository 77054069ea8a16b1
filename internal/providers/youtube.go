package providers

import (
	"context"
	"net/url"

	"golang.org/x/oauth2"
)

// YouTube authorizes through Google's v2 OAuth endpoint. The x/oauth2 google
// package still points at the v1 endpoint, so the endpoint is pinned here.
var youtubeEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// YouTubeProvider implements the Provider interface for YouTube. The flow
// requests offline access with a forced consent prompt so the backend is
// guaranteed a refresh token.
type YouTubeProvider struct {
	*ProviderData

	oauthConfig oauth2.Config
}

// NewYouTubeProvider returns a new YouTubeProvider and sets the provider url endpoints.
func NewYouTubeProvider(p *ProviderData) (*YouTubeProvider, error) {
	p.ProviderName = "YouTube"
	p.ProviderSlug = YouTubeProviderSlug
	p.Variant = VariantOAuth2Code
	p.ScopeDelimiter = " "
	p.ExchangePath = "/oauth/youtube/callback"

	endpoint := youtubeEndpoint
	if p.SignInURL != nil {
		endpoint.AuthURL = p.SignInURL.String()
	} else {
		signInURL, err := url.Parse(endpoint.AuthURL)
		if err != nil {
			return nil, err
		}
		p.SignInURL = signInURL
	}

	if len(p.Scopes) == 0 {
		p.Scopes = []string{
			"https://www.googleapis.com/auth/youtube.upload",
			"https://www.googleapis.com/auth/youtube.readonly",
		}
	}

	return &YouTubeProvider{
		ProviderData: p,
		oauthConfig: oauth2.Config{
			ClientID:    p.ClientID,
			RedirectURL: p.RedirectURI,
			Scopes:      p.Scopes,
			Endpoint:    endpoint,
		},
	}, nil
}

// BuildAuthorizationRedirect assembles the authorization URL with the
// offline/consent parameters Google requires for long-lived access.
func (p *YouTubeProvider) BuildAuthorizationRedirect(_ context.Context, _ string) (*AuthorizationRedirect, error) {
	signInURL := p.oauthConfig.AuthCodeURL("",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	return &AuthorizationRedirect{URL: signInURL}, nil
}

// ParseCallback applies the oauth2-code callback rules.
func (p *YouTubeProvider) ParseCallback(query url.Values, _ CallbackSecrets) (*Artifacts, error) {
	return parseOAuth2Callback(query)
}
