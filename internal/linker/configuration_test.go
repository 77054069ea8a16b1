package linker

import (
	"os"
	"testing"
	"time"

	"github.com/schedulr/linker/internal/pkg/testutil"
)

func TestValidConfiguration(t *testing.T) {
	config := testConfiguration()
	testutil.Ok(t, config.Validate())
}

func TestConfigurationValidation(t *testing.T) {
	testCases := []struct {
		name     string
		mutation func(*Configuration)
	}{
		{
			name: "missing backend url",
			mutation: func(c *Configuration) {
				c.BackendConfig.URL = ""
			},
		},
		{
			name: "relative backend url",
			mutation: func(c *Configuration) {
				c.BackendConfig.URL = "backend.internal/api"
			},
		},
		{
			name: "missing dashboard url",
			mutation: func(c *Configuration) {
				c.DashboardConfig.URL = ""
			},
		},
		{
			name: "missing connect path",
			mutation: func(c *Configuration) {
				c.DashboardConfig.ConnectConfig.Path = ""
			},
		},
		{
			name: "missing cookie secret",
			mutation: func(c *Configuration) {
				c.SessionConfig.CookieConfig.Secret = ""
			},
		},
		{
			name: "cookie secret is not base64",
			mutation: func(c *Configuration) {
				c.SessionConfig.CookieConfig.Secret = "not base64!"
			},
		},
		{
			name: "cookie secret decodes to the wrong length",
			mutation: func(c *Configuration) {
				c.SessionConfig.CookieConfig.Secret = "dG9vIHNob3J0"
			},
		},
		{
			name: "missing cookie name",
			mutation: func(c *Configuration) {
				c.SessionConfig.CookieConfig.Name = ""
			},
		},
		{
			name: "invalid cookie name",
			mutation: func(c *Configuration) {
				c.SessionConfig.CookieConfig.Name = "invalid name\x00"
			},
		},
		{
			name: "missing server host",
			mutation: func(c *Configuration) {
				c.ServerConfig.Host = ""
			},
		},
		{
			name: "missing statsd host",
			mutation: func(c *Configuration) {
				c.MetricsConfig.StatsdConfig.Host = ""
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := testConfiguration()
			tc.mutation(&config)
			testutil.NotEqual(t, nil, config.Validate())
		})
	}
}

func TestDefaultLinkerConfig(t *testing.T) {
	config := DefaultLinkerConfig()

	testutil.Equal(t, "x_oauth_token_secret", config.SessionConfig.CookieConfig.Name)
	testutil.Equal(t, "10m0s", config.SessionConfig.CookieConfig.Expire.String())
	testutil.Equal(t, true, config.SessionConfig.CookieConfig.Secure)
	testutil.Equal(t, "__session", config.SessionConfig.CredentialConfig.Cookie)
	testutil.Equal(t, "10s", config.BackendConfig.Timeout.String())
	testutil.Equal(t, "/settings/connections", config.DashboardConfig.ConnectConfig.Path)
}

func TestCookieSecretFormats(t *testing.T) {
	testCases := []struct {
		name   string
		secret string
	}{
		{
			name:   "standard base64",
			secret: "x7xzsM1Ky4vGQPwqy6uTztfr3jtm/pIdRbJXgE0q8kU=",
		},
		{
			name:   "url-safe base64",
			secret: "x7xzsM1Ky4vGQPwqy6uTztfr3jtm_pIdRbJXgE0q8kU=",
		},
		{
			name:   "raw 32 bytes",
			secret: "raw*cookie*secret*0123456789abcd",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := testConfiguration()
			config.SessionConfig.CookieConfig.Secret = tc.secret
			testutil.Ok(t, config.Validate())
		})
	}
}

func TestEnvironmentOverridesConfiguration(t *testing.T) {
	testCases := []struct {
		name         string
		envOverrides map[string]string
		checkFunc    func(c Configuration, t *testing.T)
	}{
		{
			name: "server host overrides",
			envOverrides: map[string]string{
				"SERVER_HOST": "linker.example.com",
			},
			checkFunc: func(c Configuration, t *testing.T) {
				testutil.Equal(t, "linker.example.com", c.ServerConfig.Host)
			},
		},
		{
			name: "backend timeout overrides",
			envOverrides: map[string]string{
				"BACKEND_TIMEOUT": "3s",
			},
			checkFunc: func(c Configuration, t *testing.T) {
				testutil.Equal(t, 3*time.Second, c.BackendConfig.Timeout)
			},
		},
		{
			name: "provider overrides",
			envOverrides: map[string]string{
				"PROVIDER_FACEBOOK_CLIENT_ID":    "fb-client-id",
				"PROVIDER_FACEBOOK_REDIRECT_URI": "https://linker.example.com/connect/facebook/callback",
				"PROVIDER_FACEBOOK_SCOPES":       "pages_show_list,publish_video",
			},
			checkFunc: func(c Configuration, t *testing.T) {
				facebook := c.ProviderConfigs["facebook"]
				testutil.Equal(t, "fb-client-id", facebook.ClientConfig.ID)
				testutil.Equal(t, "https://linker.example.com/connect/facebook/callback", facebook.RedirectConfig.URI)
				testutil.Equal(t, []string{"pages_show_list", "publish_video"}, facebook.Scopes)
			},
		},
		{
			name: "multiple provider overrides",
			envOverrides: map[string]string{
				"PROVIDER_FACEBOOK_CLIENT_ID": "fb-client-id",
				"PROVIDER_LINKEDIN_CLIENT_ID": "li-client-id",
			},
			checkFunc: func(c Configuration, t *testing.T) {
				testutil.Equal(t, "fb-client-id", c.ProviderConfigs["facebook"].ClientConfig.ID)
				testutil.Equal(t, "li-client-id", c.ProviderConfigs["linkedin"].ClientConfig.ID)
			},
		},
		{
			name: "nested dashboard and session overrides",
			envOverrides: map[string]string{
				"DASHBOARD_CONNECT_PATH":    "/accounts",
				"SESSION_COOKIE_NAME":       "_linker_transport",
				"SESSION_CREDENTIAL_COOKIE": "_dashboard_session",
				"PROVIDERS_FILE":            "/etc/linker/providers.yml",
			},
			checkFunc: func(c Configuration, t *testing.T) {
				testutil.Equal(t, "/accounts", c.DashboardConfig.ConnectConfig.Path)
				testutil.Equal(t, "_linker_transport", c.SessionConfig.CookieConfig.Name)
				testutil.Equal(t, "_dashboard_session", c.SessionConfig.CredentialConfig.Cookie)
				testutil.Equal(t, "/etc/linker/providers.yml", c.ProvidersFileConfig.File)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tc.envOverrides {
				testutil.Ok(t, os.Setenv(k, v))
			}
			have, err := LoadConfig()
			testutil.Ok(t, err)
			tc.checkFunc(have, t)
		})
	}
}
