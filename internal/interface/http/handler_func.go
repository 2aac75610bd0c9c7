// Package http provides HTTP interface layer components.
package http

import (
	"net/http"

	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/httpx"
)

// HandlerFuncE is a handler function that can return an error.
// This enables cleaner handler code without explicit error handling.
//
// Usage:
//
//	func GetRoute(w http.ResponseWriter, r *http.Request) error {
//	    rt, err := routes.Get(r.Context(), id)
//	    if err != nil {
//	        return err  // Automatically mapped to the envelope response
//	    }
//	    response.Success(w, rt)
//	    return nil
//	}
//
//	router.Get("/admin/routes/{id}", http.WrapHandler(GetRoute))
type HandlerFuncE = httpx.HandlerFuncE

// WrapHandler converts a HandlerFuncE to http.HandlerFunc. Errors returned
// by the handler are mapped to envelope responses by response.HandleError,
// which derives the HTTP status and F-code from the error's domain.Kind.
func WrapHandler(h HandlerFuncE) http.HandlerFunc {
	return httpx.WrapHandler(h)
}
