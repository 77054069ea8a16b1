// Package ping provides a load-balancer healthcheck handler that answers
// before any routing or security middleware runs.
package ping

import (
	"net/http"
)

// PingHandler answers healthcheck requests itself and forwards everything
// else to the wrapped handler.
type PingHandler struct {
	Handler http.Handler
	Path    string
}

func (p *PingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := "/ping"
	if p.Path != "" {
		path = p.Path
	}

	if r.URL.Path == path {
		w.WriteHeader(http.StatusOK)
		return
	}

	p.Handler.ServeHTTP(w, r)
}
