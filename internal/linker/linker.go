package linker

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/schedulr/linker/internal/backend"
	log "github.com/schedulr/linker/internal/pkg/logging"
	"github.com/schedulr/linker/internal/pkg/ping"
	"github.com/schedulr/linker/internal/pkg/sessions"
	"github.com/schedulr/linker/internal/providers"

	"github.com/datadog/datadog-go/statsd"
	"github.com/gorilla/mux"
)

// Linker stores all the information associated with running linking attempts.
type Linker struct {
	Host   string
	Scheme string

	registry         *providers.Registry
	backendClient    *backend.Client
	transportStore   sessions.TransportStore
	credentialSource CredentialSource
	redirectResolver *RedirectResolver

	StatsdClient *statsd.Client

	ServeMux http.Handler
}

// NewLinker creates a Linker struct from the configuration and applies the
// optional functions slice to the struct.
func NewLinker(config Configuration, optionFuncs ...func(*Linker) error) (*Linker, error) {
	logger := log.NewLogEntry()

	dashboardURL, err := url.Parse(config.DashboardConfig.URL)
	if err != nil {
		return nil, err
	}

	l := &Linker{
		Host:   config.ServerConfig.Host,
		Scheme: config.ServerConfig.Scheme,

		redirectResolver: NewRedirectResolver(dashboardURL, config.DashboardConfig.ConnectConfig.Path),
		credentialSource: &RequestCredentialSource{
			CookieName: config.SessionConfig.CredentialConfig.Cookie,
		},
	}

	l.ServeMux = l.newMux()

	// apply the option functions
	for _, optFunc := range optionFuncs {
		err := optFunc(l)
		if err != nil {
			logger.Error(err)
			return nil, err
		}
	}

	return l, nil
}

// SetRegistryFromConfig builds the provider registry from deploy-time
// configuration, applying the optional providers file on top of the built-in
// provider defaults.
func SetRegistryFromConfig(config Configuration) func(*Linker) error {
	return func(l *Linker) error {
		backendURL, err := url.Parse(config.BackendConfig.URL)
		if err != nil {
			return err
		}

		configs := map[string]providers.Config{}
		for slug, providerConfig := range config.ProviderConfigs {
			configs[slug] = providers.Config{
				ClientID:    providerConfig.ClientConfig.ID,
				RedirectURI: providerConfig.RedirectConfig.URI,
				Scopes:      providerConfig.Scopes,
			}
		}

		var overrides map[string]providers.Config
		if config.ProvidersFileConfig.File != "" {
			overrides, err = providers.LoadOverrides(config.ProvidersFileConfig.File)
			if err != nil {
				return err
			}
		}

		registry, err := providers.NewRegistry(configs, overrides, backendURL)
		if err != nil {
			return err
		}
		l.registry = registry
		return nil
	}
}

// SetRegistry sets the provider registry directly.
func SetRegistry(registry *providers.Registry) func(*Linker) error {
	return func(l *Linker) error {
		l.registry = registry
		return nil
	}
}

// SetBackendClientFromConfig builds the token-store backend client.
func SetBackendClientFromConfig(config Configuration) func(*Linker) error {
	return func(l *Linker) error {
		backendURL, err := url.Parse(config.BackendConfig.URL)
		if err != nil {
			return err
		}
		client := backend.NewClient(backendURL)
		if config.BackendConfig.Timeout != 0 {
			client.SetHTTPClient(&http.Client{Timeout: config.BackendConfig.Timeout})
		}
		l.backendClient = client
		return nil
	}
}

// SetBackendClient sets the backend client directly.
func SetBackendClient(client *backend.Client) func(*Linker) error {
	return func(l *Linker) error {
		l.backendClient = client
		return nil
	}
}

// SetTransportStoreFromConfig builds the sealed-cookie transport store from
// the session cookie configuration.
func SetTransportStoreFromConfig(config Configuration) func(*Linker) error {
	return func(l *Linker) error {
		cookieConfig := config.SessionConfig.CookieConfig
		store, err := sessions.NewCookieStore(cookieConfig.Name,
			sessions.CreateMiscreantCookieCipher(sessions.SecretBytes(cookieConfig.Secret)),
			func(c *sessions.CookieStore) error {
				c.CookieDomain = cookieConfig.Domain
				c.CookieSecure = cookieConfig.Secure
				c.CookieExpire = cookieConfig.Expire
				return nil
			})
		if err != nil {
			return err
		}
		l.transportStore = store
		return nil
	}
}

// SetTransportStore sets the transport store directly.
func SetTransportStore(store sessions.TransportStore) func(*Linker) error {
	return func(l *Linker) error {
		l.transportStore = store
		return nil
	}
}

// SetCredentialSource overrides where the caller's session credential is read from.
func SetCredentialSource(source CredentialSource) func(*Linker) error {
	return func(l *Linker) error {
		l.credentialSource = source
		return nil
	}
}

// SetStatsdClient sets the statsd client.
func SetStatsdClient(client *statsd.Client) func(*Linker) error {
	return func(l *Linker) error {
		l.StatsdClient = client
		return nil
	}
}

func (l *Linker) newMux() http.Handler {
	serviceMux := mux.NewRouter()
	serviceMux.HandleFunc("/connect/{slug}/start", l.withMethods(l.Start, "GET"))
	serviceMux.HandleFunc("/connect/{slug}/callback", l.withMethods(l.Callback, "GET"))

	return setHeaders(&ping.PingHandler{Handler: serviceMux})
}

// Start begins a linking attempt by redirecting to the provider's
// authorization page. Any per-attempt secrets the provider hands back are
// sealed into transport cookies before the redirect leaves.
func (l *Linker) Start(rw http.ResponseWriter, req *http.Request) {
	logger := log.NewLogEntry()
	remoteAddr := getRemoteAddr(req)

	slug := mux.Vars(req)["slug"]
	tags := []string{
		"action:start",
		fmt.Sprintf("provider:%s", slug),
	}

	provider, err := l.registry.Get(slug)
	if err != nil {
		tags = append(tags, "error:unknown_provider")
		l.StatsdClient.Incr("application_error", tags, 1.0)
		l.ErrorResponse(rw, req, fmt.Sprintf("unknown provider %q", slug), http.StatusNotFound)
		return
	}

	credential := l.credentialSource.SessionCredential(req)

	redirect, err := provider.BuildAuthorizationRedirect(req.Context(), credential)
	if err != nil {
		if err == providers.ErrUnauthenticated {
			tags = append(tags, "error:unauthenticated")
			l.StatsdClient.Incr("application_error", tags, 1.0)
			logger.WithProvider(slug).WithRemoteAddress(remoteAddr).Info(
				"linking attempt without a session credential")
			http.Redirect(rw, req, l.redirectResolver.ErrorURL(slug, reasonUnauthorized), http.StatusFound)
			return
		}
		tags = append(tags, "error:authorization_redirect")
		l.StatsdClient.Incr("provider_error", tags, 1.0)
		logger.WithProvider(slug).WithRemoteAddress(remoteAddr).Error(
			err, "error building authorization redirect")
		http.Redirect(rw, req, l.redirectResolver.ErrorURL(slug, reasonGenericError), http.StatusFound)
		return
	}

	if redirect.Secret != "" {
		err = l.transportStore.SetSecret(rw, req, redirect.Secret)
		if err != nil {
			tags = append(tags, "error:set_transport_secret")
			l.StatsdClient.Incr("application_error", tags, 1.0)
			logger.WithProvider(slug).Error(err, "error setting transport secret cookie")
			l.ErrorResponse(rw, req, "internal error", http.StatusInternalServerError)
			return
		}
	}
	if redirect.State != "" {
		err = l.transportStore.SetState(rw, req, redirect.State)
		if err != nil {
			tags = append(tags, "error:set_state")
			l.StatsdClient.Incr("application_error", tags, 1.0)
			logger.WithProvider(slug).Error(err, "error setting state cookie")
			l.ErrorResponse(rw, req, "internal error", http.StatusInternalServerError)
			return
		}
	}

	logger.WithProvider(slug).WithSignInURL(redirect.URL).Info("redirecting to provider")
	http.Redirect(rw, req, redirect.URL, http.StatusFound)
}

// Callback finishes a linking attempt: it validates what the provider sent
// back, exchanges the artifacts with the backend, and resolves the outcome to
// a dashboard redirect. Every path out of here is a 302 to the connections
// page; backend detail stays in the logs.
func (l *Linker) Callback(rw http.ResponseWriter, req *http.Request) {
	slug := mux.Vars(req)["slug"]

	provider, err := l.registry.Get(slug)
	if err != nil {
		tags := []string{
			"action:callback",
			fmt.Sprintf("provider:%s", slug),
			"error:unknown_provider",
		}
		l.StatsdClient.Incr("application_error", tags, 1.0)
		l.ErrorResponse(rw, req, fmt.Sprintf("unknown provider %q", slug), http.StatusNotFound)
		return
	}

	err = l.getCallback(rw, req, provider)
	if err != nil {
		http.Redirect(rw, req, l.redirectResolver.ErrorURL(slug, reasonForError(err)), http.StatusFound)
		return
	}

	http.Redirect(rw, req, l.redirectResolver.SuccessURL(slug), http.StatusFound)
}

func (l *Linker) getCallback(rw http.ResponseWriter, req *http.Request, provider providers.Provider) error {
	logger := log.NewLogEntry()
	remoteAddr := getRemoteAddr(req)

	data := provider.Data()
	slug := data.ProviderSlug
	tags := []string{
		"action:callback",
		fmt.Sprintf("provider:%s", slug),
	}

	secrets := providers.CallbackSecrets{}
	if data.Variant == providers.VariantOAuth1ThreeLegged {
		secret, err := l.transportStore.RetrieveAndClearSecret(rw, req)
		if err != nil {
			tags = append(tags, "error:missing_transport_secret")
			l.StatsdClient.Incr("application_error", tags, 1.0)
			logger.WithProvider(slug).WithRemoteAddress(remoteAddr).Error(
				err, "error retrieving transport secret cookie")
		} else {
			secrets.TransportSecret = secret
		}
	}
	if data.UsesState {
		state, err := l.transportStore.RetrieveAndClearState(rw, req)
		if err != nil {
			tags = append(tags, "error:missing_state_cookie")
			l.StatsdClient.Incr("application_error", tags, 1.0)
			logger.WithProvider(slug).WithRemoteAddress(remoteAddr).Error(
				err, "error retrieving state cookie")
		} else {
			secrets.State = state
		}
	}

	artifacts, err := provider.ParseCallback(req.URL.Query(), secrets)
	if err != nil {
		if declined, ok := err.(*providers.DeclinedError); ok {
			tags = append(tags, "error:error_in_callback")
			l.StatsdClient.Incr("provider_error", tags, 1.0)
			logger.WithProvider(slug).WithReason(declined.Code).Info(
				"provider declined the linking attempt")
			return err
		}
		if err == providers.ErrStateMismatch {
			tags = append(tags, "error:state_mismatch")
			l.StatsdClient.Incr("application_error", tags, 1.0)
			logger.WithProvider(slug).WithRemoteAddress(remoteAddr).Error(
				"state_mismatch", "POTENTIAL ATTACK: state token mismatch")
			return err
		}
		tags = append(tags, "error:invalid_callback")
		l.StatsdClient.Incr("application_error", tags, 1.0)
		logger.WithProvider(slug).WithRemoteAddress(remoteAddr).Error(
			err, "error validating provider callback")
		return err
	}

	credential := l.credentialSource.SessionCredential(req)
	if credential == "" {
		tags = append(tags, "error:unauthenticated")
		l.StatsdClient.Incr("application_error", tags, 1.0)
		logger.WithProvider(slug).WithRemoteAddress(remoteAddr).Info(
			"callback without a session credential")
		return providers.ErrUnauthenticated
	}

	err = l.backendClient.Exchange(req.Context(), data.ExchangePath, artifacts, credential)
	if err != nil {
		switch exchangeErr := err.(type) {
		case *backend.ExchangeFailedError:
			tags = append(tags, "error:backend_exchange_failed")
			l.StatsdClient.Incr("backend_error", tags, 1.0)
			logger.WithProvider(slug).WithBackendStatus(exchangeErr.Status).WithBackendBody(
				exchangeErr.Body).Error(err, "backend rejected the exchange")
		case *backend.UnreachableError:
			tags = append(tags, "error:backend_unreachable")
			l.StatsdClient.Incr("backend_error", tags, 1.0)
			logger.WithProvider(slug).Error(err, "backend unreachable during exchange")
		default:
			tags = append(tags, "error:exchange")
			l.StatsdClient.Incr("application_error", tags, 1.0)
			logger.WithProvider(slug).Error(err, "error exchanging artifacts with backend")
		}
		return err
	}

	l.StatsdClient.Incr("connect_success", tags, 1.0)
	logger.WithProvider(slug).Info("linking attempt complete")
	return nil
}
