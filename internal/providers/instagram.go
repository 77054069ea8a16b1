package providers

// NewInstagramProvider returns a provider for Instagram. Instagram accounts
// link through the Facebook OAuth dialog with Instagram-specific scopes, so
// this reuses the FacebookProvider machinery under a distinct slug.
func NewInstagramProvider(p *ProviderData) (*FacebookProvider, error) {
	if len(p.Scopes) == 0 {
		p.Scopes = []string{
			"instagram_basic",
			"instagram_content_publish",
			"pages_show_list",
			"pages_read_engagement",
		}
	}

	provider, err := NewFacebookProvider(p)
	if err != nil {
		return nil, err
	}

	provider.ProviderName = "Instagram"
	provider.ProviderSlug = InstagramProviderSlug
	provider.ExchangePath = "/api/social/instagram/callback"

	return provider, nil
}
