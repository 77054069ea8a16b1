package linker

import (
	"net/http"
	"net/url"
	"time"

	"github.com/schedulr/linker/internal/pkg/sessions"

	"github.com/micro/go-micro/config"
	"github.com/micro/go-micro/config/source/env"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/xerrors"
)

// DefaultLinkerConfig specifies all the defaults used to configure linker.
// All configuration can be set using environment variables. Below is a list
// of configuration variables via their environment configuration
//
// PROVIDER_FACEBOOK_CLIENT_ID
// PROVIDER_FACEBOOK_REDIRECT_URI
// PROVIDER_FACEBOOK_SCOPES
// (likewise for INSTAGRAM, LINKEDIN, X, YOUTUBE)
// PROVIDERS_FILE
//
// SESSION_COOKIE_NAME
// SESSION_COOKIE_SECRET
// SESSION_COOKIE_DOMAIN
// SESSION_COOKIE_EXPIRE
// SESSION_COOKIE_SECURE
// SESSION_CREDENTIAL_COOKIE
//
// BACKEND_URL
// BACKEND_TIMEOUT
//
// DASHBOARD_URL
// DASHBOARD_CONNECT_PATH
//
// SERVER_HOST
// SERVER_PORT
// SERVER_SCHEME
// SERVER_TIMEOUT_REQUEST
// SERVER_TIMEOUT_WRITE
// SERVER_TIMEOUT_READ
// SERVER_TIMEOUT_SHUTDOWN
//
// METRICS_STATSD_HOST
// METRICS_STATSD_PORT
//
// LOGGING_ENABLE
// LOGGING_LEVEL
func DefaultLinkerConfig() Configuration {
	return Configuration{
		ProviderConfigs: map[string]ProviderConfig{},
		ServerConfig: ServerConfig{
			Port:   4180,
			Scheme: "https",
			TimeoutConfig: TimeoutConfig{
				Write:    30 * time.Second,
				Read:     30 * time.Second,
				Request:  45 * time.Second,
				Shutdown: 46 * time.Second,
			},
		},
		SessionConfig: SessionConfig{
			CredentialConfig: CredentialConfig{
				Cookie: "__session",
			},
			CookieConfig: CookieConfig{
				Name:   "x_oauth_token_secret",
				Expire: 10 * time.Minute,
				Secure: true,
			},
		},
		BackendConfig: BackendConfig{
			Timeout: 10 * time.Second,
		},
		DashboardConfig: DashboardConfig{
			ConnectConfig: ConnectConfig{
				Path: "/settings/connections",
			},
		},
		MetricsConfig: MetricsConfig{
			StatsdConfig: StatsdConfig{
				Host: "localhost",
				Port: 8125,
			},
		},
		LoggingConfig: LoggingConfig{
			Enable: true,
			Level:  "info",
		},
	}
}

// Validator interface ensures all config structs implement Validate()
type Validator interface {
	Validate() error
}

var (
	_ Validator = Configuration{}
	_ Validator = ProviderConfig{}
	_ Validator = SessionConfig{}
	_ Validator = CookieConfig{}
	_ Validator = BackendConfig{}
	_ Validator = DashboardConfig{}
	_ Validator = ServerConfig{}
	_ Validator = TimeoutConfig{}
	_ Validator = MetricsConfig{}
	_ Validator = StatsdConfig{}
	_ Validator = LoggingConfig{}
)

// Configuration is the parent struct that holds all the configuration
type Configuration struct {
	ProviderConfigs map[string]ProviderConfig `mapstructure:"provider"`

	// ProvidersFileConfig points at an optional YAML file of per-provider
	// endpoint/scope overrides, applied over the built-in defaults.
	ProvidersFileConfig ProvidersFileConfig `mapstructure:"providers"`

	SessionConfig   SessionConfig   `mapstructure:"session"`
	BackendConfig   BackendConfig   `mapstructure:"backend"`
	DashboardConfig DashboardConfig `mapstructure:"dashboard"`
	ServerConfig    ServerConfig    `mapstructure:"server"`
	MetricsConfig   MetricsConfig   `mapstructure:"metrics"`
	LoggingConfig   LoggingConfig   `mapstructure:"logging"`
}

func (c Configuration) Validate() error {
	for slug, providerConfig := range c.ProviderConfigs {
		if err := providerConfig.Validate(); err != nil {
			return xerrors.Errorf("invalid provider.%s config: %w", slug, err)
		}
	}

	if err := c.SessionConfig.Validate(); err != nil {
		return xerrors.Errorf("invalid session config: %w", err)
	}

	if err := c.BackendConfig.Validate(); err != nil {
		return xerrors.Errorf("invalid backend config: %w", err)
	}

	if err := c.DashboardConfig.Validate(); err != nil {
		return xerrors.Errorf("invalid dashboard config: %w", err)
	}

	if err := c.ServerConfig.Validate(); err != nil {
		return xerrors.Errorf("invalid server config: %w", err)
	}

	if err := c.MetricsConfig.Validate(); err != nil {
		return xerrors.Errorf("invalid metrics config: %w", err)
	}

	return nil
}

// ProviderConfig holds the deploy-time values for one provider. The x
// provider needs neither a client id nor a redirect uri client-side, the
// backend holds its consumer key; everything else requires both.
type ProviderConfig struct {
	ClientConfig   ClientConfig   `mapstructure:"client"`
	RedirectConfig RedirectConfig `mapstructure:"redirect"`
	Scopes         []string       `mapstructure:"scopes"`
}

func (pc ProviderConfig) Validate() error {
	if pc.RedirectConfig.URI != "" {
		if _, err := url.Parse(pc.RedirectConfig.URI); err != nil {
			return xerrors.Errorf("invalid provider redirect.uri: %w", err)
		}
	}
	return nil
}

type ClientConfig struct {
	ID string `mapstructure:"id"`
}

type RedirectConfig struct {
	URI string `mapstructure:"uri"`
}

type SessionConfig struct {
	CookieConfig CookieConfig `mapstructure:"cookie"`

	CredentialConfig CredentialConfig `mapstructure:"credential"`
}

// CredentialConfig names the cookie the external identity collaborator sets
// for signed-in dashboard users. Only ever read, never written here.
type CredentialConfig struct {
	Cookie string `mapstructure:"cookie"`
}

func (sc SessionConfig) Validate() error {
	if err := sc.CookieConfig.Validate(); err != nil {
		return xerrors.Errorf("invalid session.cookie config: %w", err)
	}

	return nil
}

func validateCipherKeyValue(val string) error {
	// the cookie store accepts base64-encoded or raw binary secrets
	slen := len(sessions.SecretBytes(val))
	if slen != 32 && slen != 64 {
		return xerrors.Errorf("expected 32 or 64 bytes, as from `openssl rand 32 -base64`, but got %d", slen)
	}

	return nil
}

type CookieConfig struct {
	Name   string        `mapstructure:"name"`
	Secret string        `mapstructure:"secret"`
	Domain string        `mapstructure:"domain"`
	Expire time.Duration `mapstructure:"expire"`
	Secure bool          `mapstructure:"secure"`
}

func (cc CookieConfig) Validate() error {
	if cc.Name == "" {
		return xerrors.New("no cookie.name configured")
	}

	cookie := &http.Cookie{Name: cc.Name}
	if cookie.String() == "" {
		return xerrors.Errorf("invalid cookie.name: %q", cc.Name)
	}

	if cc.Secret == "" {
		return xerrors.New("no cookie.secret configured")
	}

	if err := validateCipherKeyValue(cc.Secret); err != nil {
		return xerrors.Errorf("invalid cookie.secret: %w", err)
	}

	return nil
}

type ProvidersFileConfig struct {
	File string `mapstructure:"file"`
}

type BackendConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func (bc BackendConfig) Validate() error {
	if bc.URL == "" {
		return xerrors.New("no backend.url configured")
	}

	backendURL, err := url.Parse(bc.URL)
	if err != nil {
		return xerrors.Errorf("invalid backend.url: %w", err)
	}
	if backendURL.Scheme == "" || backendURL.Host == "" {
		return xerrors.Errorf("invalid backend.url: %q", bc.URL)
	}

	return nil
}

type DashboardConfig struct {
	URL           string        `mapstructure:"url"`
	ConnectConfig ConnectConfig `mapstructure:"connect"`
}

// ConnectConfig locates the dashboard's connect-accounts page that every
// attempt outcome redirects back to.
type ConnectConfig struct {
	Path string `mapstructure:"path"`
}

func (dc DashboardConfig) Validate() error {
	if dc.URL == "" {
		return xerrors.New("no dashboard.url configured")
	}

	dashboardURL, err := url.Parse(dc.URL)
	if err != nil {
		return xerrors.Errorf("invalid dashboard.url: %w", err)
	}
	if dashboardURL.Scheme == "" || dashboardURL.Host == "" {
		return xerrors.Errorf("invalid dashboard.url: %q", dc.URL)
	}

	if dc.ConnectConfig.Path == "" {
		return xerrors.New("no dashboard.connect.path configured")
	}

	return nil
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	Scheme string `mapstructure:"scheme"`

	TimeoutConfig TimeoutConfig `mapstructure:"timeout"`
}

func (sc ServerConfig) Validate() error {
	if sc.Host == "" {
		return xerrors.New("no server.host configured")
	}

	if sc.Port == 0 {
		return xerrors.New("no server.port configured")
	}

	if err := sc.TimeoutConfig.Validate(); err != nil {
		return xerrors.Errorf("invalid server.timeout config: %w", err)
	}

	return nil
}

type TimeoutConfig struct {
	Write    time.Duration `mapstructure:"write"`
	Read     time.Duration `mapstructure:"read"`
	Request  time.Duration `mapstructure:"request"`
	Shutdown time.Duration `mapstructure:"shutdown"`
}

func (tc TimeoutConfig) Validate() error {
	return nil
}

type MetricsConfig struct {
	StatsdConfig StatsdConfig `mapstructure:"statsd"`
}

func (mc MetricsConfig) Validate() error {
	if err := mc.StatsdConfig.Validate(); err != nil {
		return xerrors.Errorf("invalid metrics.statsd config: %w", err)
	}

	return nil
}

type StatsdConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (sc StatsdConfig) Validate() error {
	if sc.Host == "" {
		return xerrors.New("no statsd.host configured")
	}

	if sc.Port == 0 {
		return xerrors.New("no statsd.port configured")
	}

	return nil
}

type LoggingConfig struct {
	Enable bool   `mapstructure:"enable"`
	Level  string `mapstructure:"level"`
}

func (lc LoggingConfig) Validate() error {
	return nil
}

// LoadConfig loads all the configuration from env and defaults
func LoadConfig() (Configuration, error) {
	c := DefaultLinkerConfig()

	conf := config.NewConfig()
	err := conf.Load(env.NewSource())
	if err != nil {
		return c, err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result: &c,
	})
	if err != nil {
		return c, err
	}

	err = decoder.Decode(conf.Map())
	if err != nil {
		return c, err
	}

	return c, nil
}
