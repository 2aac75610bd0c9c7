// Package http provides HTTP server and routing functionality.
package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/admin"
)

// RegisterAdminRoutes mounts the Admin API under the /admin prefix router.go
// has already guarded with AuthMiddleware and RequireRole("admin"). Each
// resource is optional: deps built without the corresponding handler (e.g. a
// test isolating one surface) simply skips that mount point.
func RegisterAdminRoutes(r chi.Router, deps RouterDeps) {
	r.Get("/health", admin.HealthHandler)

	if deps.RouteHandlers != nil {
		r.Route("/routes", func(r chi.Router) {
			admin.RegisterRouteRoutes(r, deps.RouteHandlers)
		})
	}

	if deps.ServiceHandlers != nil {
		r.Route("/services", func(r chi.Router) {
			admin.RegisterServiceRoutes(r, deps.ServiceHandlers)
		})
	}

	if deps.PermissionHandlers != nil {
		r.Route("/permissions", func(r chi.Router) {
			admin.RegisterPermissionRoutes(r, deps.PermissionHandlers)
		})
	}

	if deps.BatchHandlers != nil {
		r.Route("/batch", func(r chi.Router) {
			admin.RegisterBatchRoutes(r, deps.BatchHandlers)
		})
	}
}
