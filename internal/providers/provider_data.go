package providers

import (
	"net/url"
	"strings"
)

// Variant selects which sub-protocol a provider's request builder and
// callback validator speak.
type Variant string

const (
	// VariantOAuth2Code is the standard OAuth2 authorization-code flow.
	VariantOAuth2Code Variant = "oauth2-code"
	// VariantOAuth1ThreeLegged is the OAuth1.0a request-token / verifier flow.
	VariantOAuth1ThreeLegged Variant = "oauth1-three-legged"
)

// ProviderData holds the fields associated with providers
// necessary to implement the Provider interface.
type ProviderData struct {
	ProviderName string
	ProviderSlug string
	Variant      Variant

	ClientID    string
	RedirectURI string

	SignInURL      *url.URL
	Scopes         []string
	ScopeDelimiter string

	// UsesState is set for providers whose authorization request carries a
	// CSRF state nonce that must round-trip through the callback.
	UsesState bool

	// ExchangePath is the backend's callback path for this provider. The
	// paths diverge per provider and the backend routes on them, so they are
	// data here rather than a convention.
	ExchangePath string
}

// Data returns a ProviderData.
func (p *ProviderData) Data() *ProviderData { return p }

// ScopeString renders the scope list with the provider's required delimiter.
func (p *ProviderData) ScopeString() string {
	return strings.Join(p.Scopes, p.ScopeDelimiter)
}
