package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/schedulr/linker/internal/pkg/aead"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"
)

// LinkedInProvider implements the Provider interface for LinkedIn. LinkedIn
// uses space-joined scopes and a CSRF state nonce that must round-trip
// through the callback.
type LinkedInProvider struct {
	*ProviderData

	oauthConfig oauth2.Config
}

// NewLinkedInProvider returns a new LinkedInProvider and sets the provider url endpoints.
func NewLinkedInProvider(p *ProviderData) (*LinkedInProvider, error) {
	p.ProviderName = "LinkedIn"
	p.ProviderSlug = LinkedInProviderSlug
	p.Variant = VariantOAuth2Code
	p.ScopeDelimiter = " "
	p.UsesState = true
	p.ExchangePath = "/api/social/linkedin/callback"

	endpoint := linkedin.Endpoint
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
		p.Scopes = []string{"openid", "profile", "w_member_social"}
	}

	return &LinkedInProvider{
		ProviderData: p,
		oauthConfig: oauth2.Config{
			ClientID:    p.ClientID,
			RedirectURL: p.RedirectURI,
			Scopes:      p.Scopes,
			Endpoint:    endpoint,
		},
	}, nil
}

// BuildAuthorizationRedirect assembles the authorization URL with a fresh
// CSRF state nonce. The nonce is returned so the caller can stash it in the
// transport cookie for validation at callback time.
func (p *LinkedInProvider) BuildAuthorizationRedirect(_ context.Context, _ string) (*AuthorizationRedirect, error) {
	nonce := fmt.Sprintf("%x", aead.GenerateKey())
	return &AuthorizationRedirect{
		URL:   p.oauthConfig.AuthCodeURL(nonce),
		State: nonce,
	}, nil
}

// ParseCallback applies the oauth2-code callback rules and additionally
// requires the state nonce to match the one issued for this attempt.
func (p *LinkedInProvider) ParseCallback(query url.Values, secrets CallbackSecrets) (*Artifacts, error) {
	if errorString := query.Get("error"); errorString != "" {
		return nil, &DeclinedError{Code: errorString}
	}

	if secrets.State == "" || query.Get("state") != secrets.State {
		return nil, ErrStateMismatch
	}

	code := query.Get("code")
	if code == "" {
		return nil, ErrMissingCode
	}

	return &Artifacts{Code: code}, nil
}
