package linker

import (
	"net/http"
	"strings"
)

// CredentialSource yields the caller's dashboard session credential. The
// credential is minted by the identity collaborator; this service only ever
// forwards it to the backend as a bearer token.
type CredentialSource interface {
	SessionCredential(req *http.Request) string
}

// RequestCredentialSource reads the credential from the Authorization header,
// falling back to the session cookie the dashboard sets for browser traffic.
type RequestCredentialSource struct {
	CookieName string
}

func (s *RequestCredentialSource) SessionCredential(req *http.Request) string {
	auth := req.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		if credential := strings.TrimPrefix(auth, "Bearer "); credential != "" {
			return credential
		}
	}

	cookie, err := req.Cookie(s.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
