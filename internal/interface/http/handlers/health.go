// Package handlers contains HTTP request handlers for the gateway's
// operational endpoints (liveness, readiness).
package handlers

import (
	"context"
	"net/http"

	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/response"
)

// HealthData represents the health check data.
type HealthData struct {
	Status string `json:"status"`
}

// HealthHandler answers the liveness probe: the process is up and serving
// HTTP. It never touches Postgres or Redis, so it stays healthy through a
// database or cache outage.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, HealthData{Status: "ok"})
}

// DBHealthChecker checks the reachability of a dependency the gateway needs
// to serve traffic correctly (Postgres route store, Redis shared cache).
type DBHealthChecker interface {
	Ping(ctx context.Context) error
}

// RouteCounter reports the number of active routes currently loaded into
// the route matcher's snapshot, satisfied by *matcher.Matcher.
type RouteCounter interface {
	RouteCount() int
}

// InstanceCounter reports the number of healthy instances across every
// registered service, satisfied by *registry.Registry.
type InstanceCounter interface {
	HealthyInstanceCount(ctx context.Context) (int, error)
}

// GatewayHealthData is the payload for GET /health.
type GatewayHealthData struct {
	Status           string `json:"status"`
	Database         string `json:"database"`
	Cache            string `json:"cache"`
	ActiveRoutes     int    `json:"active_routes"`
	HealthyInstances int    `json:"healthy_instances"`
}

// GatewayHealthHandler answers spec.md §6's public GET /health: database
// and cache reachability plus the active route count and healthy instance
// count, unauthenticated so an orchestrator's liveness/readiness probe
// never needs an admin token to reach it.
type GatewayHealthHandler struct {
	dbChecker    DBHealthChecker
	redisChecker DBHealthChecker
	routes       RouteCounter
	instances    InstanceCounter
}

// NewGatewayHealthHandler builds a GatewayHealthHandler. Any dependency may
// be nil: a nil checker leaves that dependency reported as "ok" and a nil
// counter reports 0; every field of the report is always present.
func NewGatewayHealthHandler(dbChecker, redisChecker DBHealthChecker, routes RouteCounter, instances InstanceCounter) *GatewayHealthHandler {
	return &GatewayHealthHandler{dbChecker: dbChecker, redisChecker: redisChecker, routes: routes, instances: instances}
}

// ServeHTTP reports status "ok" when every configured dependency is
// reachable, "degraded" otherwise — it never fails the response itself,
// since a database or cache outage shouldn't take liveness reporting down
// with it.
func (h *GatewayHealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := GatewayHealthData{Status: "ok", Database: "ok", Cache: "ok"}

	if h.dbChecker != nil {
		if err := h.dbChecker.Ping(ctx); err != nil {
			data.Database = "unreachable"
			data.Status = "degraded"
		}
	}
	if h.redisChecker != nil {
		if err := h.redisChecker.Ping(ctx); err != nil {
			data.Cache = "unreachable"
			data.Status = "degraded"
		}
	}
	if h.routes != nil {
		data.ActiveRoutes = h.routes.RouteCount()
	}
	if h.instances != nil {
		if n, err := h.instances.HealthyInstanceCount(ctx); err == nil {
			data.HealthyInstances = n
		}
	}

	response.Success(w, data)
}

// ReadyzHandler answers the readiness probe: the gateway can reach the
// route store and the shared cache it depends on for every request.
type ReadyzHandler struct {
	dbChecker    DBHealthChecker
	redisChecker DBHealthChecker
}

// NewReadyzHandler creates a ReadyzHandler backed by the route store.
func NewReadyzHandler(dbChecker DBHealthChecker) *ReadyzHandler {
	return &ReadyzHandler{dbChecker: dbChecker}
}

// WithRedis adds the shared-cache health checker to the readiness handler.
func (h *ReadyzHandler) WithRedis(redisChecker DBHealthChecker) *ReadyzHandler {
	h.redisChecker = redisChecker
	return h
}

// ServeHTTP returns 200 if every configured dependency is reachable, 503
// otherwise.
func (h *ReadyzHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.dbChecker != nil {
		if err := h.dbChecker.Ping(ctx); err != nil {
			response.Fail(w, http.StatusServiceUnavailable, response.CodeInternal, "database unavailable")
			return
		}
	}

	if h.redisChecker != nil {
		if err := h.redisChecker.Ping(ctx); err != nil {
			response.Fail(w, http.StatusServiceUnavailable, response.CodeInternal, "cache unavailable")
			return
		}
	}

	response.Success(w, HealthData{Status: "ready"})
}
