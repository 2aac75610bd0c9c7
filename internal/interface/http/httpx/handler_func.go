package httpx

import (
	"net/http"

	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/response"
)

// HandlerFuncE is a handler function that can return an error. Living in
// httpx (rather than the root http package) lets both the router and the
// admin handlers depend on it without an import cycle.
type HandlerFuncE func(w http.ResponseWriter, r *http.Request) error

// WrapHandler converts a HandlerFuncE to http.HandlerFunc. Errors returned
// by the handler are mapped to envelope responses by response.HandleError.
func WrapHandler(h HandlerFuncE) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			response.HandleError(w, err)
		}
	}
}
