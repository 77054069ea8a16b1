package sessions

import (
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/schedulr/linker/internal/pkg/aead"
	log "github.com/schedulr/linker/internal/pkg/logging"

	"github.com/benbjohnson/clock"
)

// TransportStore carries the short-lived secrets of a linking attempt across
// the provider redirect round-trip. Values are write-once / read-once: a
// retrieve clears the cookie so a secret is never consumed twice.
type TransportStore interface {
	SetSecret(http.ResponseWriter, *http.Request, string) error
	RetrieveAndClearSecret(http.ResponseWriter, *http.Request) (string, error)
	SetState(http.ResponseWriter, *http.Request, string) error
	RetrieveAndClearState(http.ResponseWriter, *http.Request) (string, error)
}

// CookieStore implements TransportStore on top of httpOnly cookies whose
// values are sealed with an AEAD cipher, so the browser only ever holds an
// opaque blob.
type CookieStore struct {
	Name           string
	StateName      string
	CookieExpire   time.Duration
	CookieSecure   bool
	CookieHTTPOnly bool
	CookieDomain   string
	CookieCipher   aead.Cipher

	Clock clock.Clock
}

// SecretBytes attempts to base64 decode the secret, standard encoding first
// and url-safe encoding second; if both fail it treats the secret as binary
func SecretBytes(secret string) []byte {
	b, err := base64.StdEncoding.DecodeString(addPadding(secret))
	if err == nil {
		return b
	}
	b, err = base64.URLEncoding.DecodeString(addPadding(secret))
	if err == nil {
		return b
	}
	return []byte(secret)
}

func addPadding(secret string) string {
	padding := len(secret) % 4
	switch padding {
	case 1:
		return secret + "==="
	case 2:
		return secret + "=="
	case 3:
		return secret + "="
	default:
		return secret
	}
}

// CreateMiscreantCookieCipher creates a new miscreant cipher with the cookie secret
func CreateMiscreantCookieCipher(cookieSecret []byte) func(s *CookieStore) error {
	return func(s *CookieStore) error {
		cipher, err := aead.NewMiscreantCipher(cookieSecret)
		if err != nil {
			return fmt.Errorf("miscreant cookie-secret error: %s", err.Error())
		}
		s.CookieCipher = cipher
		return nil
	}
}

// NewCookieStore returns a new store for the named transport cookie. The
// state cookie name is derived from the transport cookie name.
func NewCookieStore(cookieName string, optFuncs ...func(*CookieStore) error) (*CookieStore, error) {
	c := &CookieStore{
		Name:           cookieName,
		StateName:      fmt.Sprintf("%v_%v", cookieName, "state"),
		CookieSecure:   true,
		CookieHTTPOnly: true,
		CookieExpire:   10 * time.Minute,
		Clock:          clock.New(),
	}

	for _, f := range optFuncs {
		err := f(c)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (s *CookieStore) makeCookie(req *http.Request, name string, value string, expiration time.Duration) *http.Cookie {
	domain := req.Host
	if h, _, err := net.SplitHostPort(domain); err == nil {
		domain = h
	}
	if s.CookieDomain != "" {
		if !strings.HasSuffix(domain, s.CookieDomain) {
			log.NewLogEntry().WithCookieName(name).WithRequestHost(domain).Info(
				"using configured cookie domain over request host")
		}
		domain = s.CookieDomain
	}

	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   domain,
		HttpOnly: s.CookieHTTPOnly,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.Clock.Now().Add(expiration),
	}
}

func (s *CookieStore) setSealed(rw http.ResponseWriter, req *http.Request, name, value string) error {
	sealed, err := s.CookieCipher.Seal(value)
	if err != nil {
		return err
	}
	http.SetCookie(rw, s.makeCookie(req, name, sealed, s.CookieExpire))
	return nil
}

func (s *CookieStore) retrieveAndClear(rw http.ResponseWriter, req *http.Request, name string) (string, error) {
	c, err := req.Cookie(name)
	if err != nil {
		// always http.ErrNoCookie
		return "", err
	}
	http.SetCookie(rw, s.makeCookie(req, name, "", time.Hour*-1))
	return s.CookieCipher.Open(c.Value)
}

// SetSecret writes the sealed transport secret cookie.
func (s *CookieStore) SetSecret(rw http.ResponseWriter, req *http.Request, value string) error {
	return s.setSealed(rw, req, s.Name, value)
}

// RetrieveAndClearSecret consumes the transport secret cookie. The cookie is
// cleared even when its value fails to open.
func (s *CookieStore) RetrieveAndClearSecret(rw http.ResponseWriter, req *http.Request) (string, error) {
	return s.retrieveAndClear(rw, req, s.Name)
}

// SetState writes the sealed state nonce cookie.
func (s *CookieStore) SetState(rw http.ResponseWriter, req *http.Request, value string) error {
	return s.setSealed(rw, req, s.StateName, value)
}

// RetrieveAndClearState consumes the state nonce cookie.
func (s *CookieStore) RetrieveAndClearState(rw http.ResponseWriter, req *http.Request) (string, error) {
	return s.retrieveAndClear(rw, req, s.StateName)
}
