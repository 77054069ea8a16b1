package linker

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/schedulr/linker/internal/backend"
	"github.com/schedulr/linker/internal/providers"
)

// Linking attempts always resolve to a redirect back to the dashboard's
// connections page, never to an error page rendered here. The outcome travels
// in the query string.
const (
	statusSuccess = "success"
	statusError   = "error"
)

// Reason codes form a closed vocabulary, plus provider error codes passed
// through verbatim after sanitizing. Backend failure detail never gets a
// reason of its own; it stays in the server logs.
const (
	reasonNoCode                 = "no_code"
	reasonUnauthorized           = "unauthorized"
	reasonMissingTransportSecret = "missing_transport_secret"
	reasonStateMismatch          = "state_mismatch"
	reasonGenericError           = "error"
)

// RedirectResolver builds the dashboard redirect for every attempt outcome.
type RedirectResolver struct {
	connectURL *url.URL
}

// NewRedirectResolver resolves the connections page URL under the dashboard base URL.
func NewRedirectResolver(dashboardURL *url.URL, connectPath string) *RedirectResolver {
	return &RedirectResolver{
		connectURL: dashboardURL.ResolveReference(&url.URL{Path: connectPath}),
	}
}

// SuccessURL returns the connections page URL for a completed attempt. A
// success carries no reason parameter.
func (r *RedirectResolver) SuccessURL(providerSlug string) string {
	return r.resolve(providerSlug, statusSuccess, "")
}

// ErrorURL returns the connections page URL for a failed attempt.
func (r *RedirectResolver) ErrorURL(providerSlug, reason string) string {
	return r.resolve(providerSlug, statusError, reason)
}

func (r *RedirectResolver) resolve(providerSlug, status, reason string) string {
	params := url.Values{}
	params.Set("provider", providerSlug)
	params.Set("status", status)
	if reason != "" {
		params.Set("reason", reason)
	}
	return r.connectURL.ResolveReference(&url.URL{RawQuery: params.Encode()}).String()
}

// reasonForError maps a failed attempt to its redirect reason. Anything not
// recognized, backend exchange failures included, collapses to the generic
// reason so that internal detail cannot leak into a user-facing URL.
func reasonForError(err error) string {
	if declined, ok := err.(*providers.DeclinedError); ok {
		return sanitizeReason(declined.Code)
	}
	if _, ok := err.(*backend.ExchangeFailedError); ok {
		return reasonGenericError
	}
	if _, ok := err.(*backend.UnreachableError); ok {
		return reasonGenericError
	}

	switch err {
	case providers.ErrMissingCode, providers.ErrIncompleteCallback:
		return reasonNoCode
	case providers.ErrUnauthenticated:
		return reasonUnauthorized
	case providers.ErrMissingTransportSecret, http.ErrNoCookie:
		return reasonMissingTransportSecret
	case providers.ErrStateMismatch:
		return reasonStateMismatch
	}

	return reasonGenericError
}

// sanitizeReason keeps provider error codes to a conservative token alphabet
// before they are echoed into a redirect URL.
func sanitizeReason(code string) string {
	code = strings.ToLower(code)
	var b strings.Builder
	for _, r := range code {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
		if b.Len() >= 64 {
			break
		}
	}
	if b.Len() == 0 {
		return reasonGenericError
	}
	return b.String()
}
