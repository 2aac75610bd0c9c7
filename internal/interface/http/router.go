// Package http provides HTTP server and routing functionality.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iruldev/golang-api-hexagonal/internal/infra/config"
	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/admin"
	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/handlers"
	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/middleware"
	"github.com/iruldev/golang-api-hexagonal/internal/shared/metrics"
)

// RouterDeps collects everything NewRouter needs to wire the gateway's
// HTTP surface. Every field besides Config is optional: a zero value
// simply leaves the corresponding mount point out of the router, which is
// what router tests exercise to isolate one concern at a time.
type RouterDeps struct {
	Config *config.Config
	Logger *slog.Logger

	// Authenticator gates /admin/*. When nil, the admin group is not
	// mounted at all and every /admin/* path 404s.
	Authenticator middleware.Authenticator

	DBChecker    handlers.DBHealthChecker
	RedisChecker handlers.DBHealthChecker

	// RouteCounter and InstanceCounter back the GET /health report's active
	// route and healthy instance counts; nil simply reports zero for that
	// field rather than omitting the endpoint.
	RouteCounter    handlers.RouteCounter
	InstanceCounter handlers.InstanceCounter

	MetricsRegistry *prometheus.Registry
	HTTPMetrics     metrics.HTTPMetrics

	// ProxyHandler runs the full gateway pipeline for every request that
	// doesn't match an operational or admin route. Left nil in tests that
	// only exercise the operational/admin surface.
	ProxyHandler http.Handler

	RouteHandlers      *admin.RouteHandlers
	ServiceHandlers    *admin.ServiceHandlers
	PermissionHandlers *admin.PermissionHandlers
	BatchHandlers      *admin.BatchHandlers
}

// NewRouter builds the gateway's chi router: operational endpoints
// (health, readiness, metrics), the admin CRUD API guarded by JWT auth and
// role-based access control, and the dynamic proxy pipeline mounted as the
// catch-all for every other path.
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(middleware.Otel("gateway"))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.ErrorHandler)

	if deps.Config != nil {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.Config.CORSOriginList(),
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           3600,
		}))
	}

	if deps.HTTPMetrics != nil {
		r.Use(middleware.Metrics(deps.HTTPMetrics))
	}

	r.Get("/healthz", handlers.HealthHandler)

	gatewayHealth := handlers.NewGatewayHealthHandler(deps.DBChecker, deps.RedisChecker, deps.RouteCounter, deps.InstanceCounter)
	r.Get("/health", gatewayHealth.ServeHTTP)

	readyz := handlers.NewReadyzHandler(deps.DBChecker)
	if deps.RedisChecker != nil {
		readyz = readyz.WithRedis(deps.RedisChecker)
	}
	r.Get("/readyz", readyz.ServeHTTP)

	if deps.MetricsRegistry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Get("/swagger-ui", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "swagger ui not bundled in this build", http.StatusNotImplemented)
	})

	if deps.Authenticator != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(deps.Authenticator))
			r.Use(middleware.RequireRole("admin"))
			RegisterAdminRoutes(r, deps)
		})
	}

	if deps.ProxyHandler != nil {
		r.NotFound(deps.ProxyHandler.ServeHTTP)
	}

	return r
}
