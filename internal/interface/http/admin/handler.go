// Package admin provides HTTP handlers for the gateway's administrative
// API: routes, service instances, and permissions CRUD plus batch
// operations. Mounted under /admin, guarded by AuthMiddleware + RBAC at the
// route-group level in router.go, never under /api/v1 with proxied traffic.
package admin

import (
	"net/http"

	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/response"
)

// HealthHandler reports that the admin surface itself is reachable and that
// the caller made it past authentication and RBAC to reach this package.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]any{
		"status":       "ok",
		"admin_access": true,
	})
}
