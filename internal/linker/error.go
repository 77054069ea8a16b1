package linker

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// ErrorResponse renders an error page for errors that happen outside a linking
// attempt, where no provider context exists to redirect back to the dashboard
// with. The body is JSON since this service serves no HTML of its own.
func (l *Linker) ErrorResponse(rw http.ResponseWriter, req *http.Request, message string, code int) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	json.NewEncoder(rw).Encode(errorResponse{
		Error: message,
		Code:  code,
	})
}
