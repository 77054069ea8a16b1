package providers

import (
	"io/ioutil"
	"net/url"
	"sort"

	"github.com/imdario/mergo"
	"golang.org/x/xerrors"
	yaml "gopkg.in/yaml.v2"
)

// Config carries the deploy-time values for one provider. ClientID and
// RedirectURI come from the environment; AuthURL and Scopes may additionally
// be overridden from the provider override file.
type Config struct {
	ClientID    string   `yaml:"client_id"`
	RedirectURI string   `yaml:"redirect_uri"`
	AuthURL     string   `yaml:"auth_url"`
	Scopes      []string `yaml:"scopes"`
}

// Registry holds one constructed Provider per supported slug. It is built
// once at process start and read-only afterwards.
type Registry struct {
	providers map[string]Provider
}

// LoadOverrides reads the optional provider override file, a YAML map of
// provider slug to Config. Operators use it to adjust scopes or endpoints
// without a rebuild.
func LoadOverrides(path string) (map[string]Config, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("reading provider overrides: %w", err)
	}

	overrides := map[string]Config{}
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, xerrors.Errorf("parsing provider overrides: %w", err)
	}

	for slug := range overrides {
		if !knownSlug(slug) {
			return nil, xerrors.Errorf("provider overrides: unknown provider %q", slug)
		}
	}

	return overrides, nil
}

func knownSlug(slug string) bool {
	switch slug {
	case FacebookProviderSlug, InstagramProviderSlug, LinkedInProviderSlug, XProviderSlug, YouTubeProviderSlug:
		return true
	}
	return false
}

// NewRegistry constructs every supported provider. A missing client id or
// redirect uri for an oauth2-code provider is a configuration error and
// fails construction outright, it never degrades into a runtime redirect.
func NewRegistry(configs map[string]Config, overrides map[string]Config, backendURL *url.URL) (*Registry, error) {
	registry := &Registry{providers: map[string]Provider{}}

	slugs := []string{
		FacebookProviderSlug,
		InstagramProviderSlug,
		LinkedInProviderSlug,
		XProviderSlug,
		YouTubeProviderSlug,
	}

	for _, slug := range slugs {
		cfg := configs[slug]
		if override, ok := overrides[slug]; ok {
			if err := mergo.Merge(&cfg, override, mergo.WithOverride); err != nil {
				return nil, xerrors.Errorf("provider %s: merging overrides: %w", slug, err)
			}
		}

		provider, err := newProvider(slug, cfg, backendURL)
		if err != nil {
			return nil, xerrors.Errorf("provider %s: %w", slug, err)
		}
		registry.providers[slug] = provider
	}

	return registry, nil
}

func newProvider(slug string, cfg Config, backendURL *url.URL) (Provider, error) {
	data := &ProviderData{
		ClientID:    cfg.ClientID,
		RedirectURI: cfg.RedirectURI,
		Scopes:      cfg.Scopes,
	}

	if cfg.AuthURL != "" {
		signInURL, err := url.Parse(cfg.AuthURL)
		if err != nil {
			return nil, xerrors.Errorf("invalid auth_url: %w", err)
		}
		data.SignInURL = signInURL
	}

	// x builds no authorization URL client-side: the backend holds the
	// consumer key, so only the backend URL is required for it.
	if slug != XProviderSlug {
		if cfg.ClientID == "" {
			return nil, xerrors.New("no client_id configured")
		}
		if cfg.RedirectURI == "" {
			return nil, xerrors.New("no redirect_uri configured")
		}
	}

	switch slug {
	case FacebookProviderSlug:
		return NewFacebookProvider(data)
	case InstagramProviderSlug:
		return NewInstagramProvider(data)
	case LinkedInProviderSlug:
		return NewLinkedInProvider(data)
	case XProviderSlug:
		if backendURL == nil {
			return nil, xerrors.New("no backend url configured")
		}
		return NewXProvider(data, backendURL)
	case YouTubeProviderSlug:
		return NewYouTubeProvider(data)
	}
	return nil, ErrUnknownProvider
}

// Get returns the Provider for a slug. Unknown slugs are a caller bug.
func (r *Registry) Get(slug string) (Provider, error) {
	provider, ok := r.providers[slug]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return provider, nil
}

// Slugs returns the supported provider slugs in stable order.
func (r *Registry) Slugs() []string {
	slugs := make([]string, 0, len(r.providers))
	for slug := range r.providers {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}
