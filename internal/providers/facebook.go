package providers

import (
	"context"
	"net/url"
)

// facebookSignInHost hosts the OAuth dialog for both Facebook and Instagram.
var facebookSignInURL = &url.URL{
	Scheme: "https",
	Host:   "www.facebook.com",
	Path:   "/v21.0/dialog/oauth",
}

// FacebookProvider implements the Provider interface for platforms that
// authorize through the Facebook OAuth dialog. Scopes are rendered
// comma-joined, which rules out the stock oauth2.Config URL builder.
type FacebookProvider struct {
	*ProviderData
}

// NewFacebookProvider returns a new FacebookProvider and sets the provider url endpoints.
func NewFacebookProvider(p *ProviderData) (*FacebookProvider, error) {
	p.ProviderName = "Facebook"
	p.ProviderSlug = FacebookProviderSlug
	p.Variant = VariantOAuth2Code
	p.ScopeDelimiter = ","
	p.ExchangePath = "/api/social/facebook/callback"
	if p.SignInURL == nil {
		p.SignInURL = facebookSignInURL
	}

	if len(p.Scopes) == 0 {
		p.Scopes = []string{
			"pages_show_list",
			"pages_read_engagement",
			"pages_manage_posts",
			"publish_video",
		}
	}

	return &FacebookProvider{ProviderData: p}, nil
}

// BuildAuthorizationRedirect assembles the OAuth dialog URL. No network call
// and no session credential are needed to build it.
func (p *FacebookProvider) BuildAuthorizationRedirect(_ context.Context, _ string) (*AuthorizationRedirect, error) {
	var a url.URL
	a = *p.SignInURL

	params := url.Values{}
	params.Set("client_id", p.ClientID)
	params.Set("redirect_uri", p.RedirectURI)
	params.Set("response_type", "code")
	params.Set("scope", p.ScopeString())

	a.RawQuery = params.Encode()
	return &AuthorizationRedirect{URL: a.String()}, nil
}

// ParseCallback applies the oauth2-code callback rules.
func (p *FacebookProvider) ParseCallback(query url.Values, _ CallbackSecrets) (*Artifacts, error) {
	return parseOAuth2Callback(query)
}
