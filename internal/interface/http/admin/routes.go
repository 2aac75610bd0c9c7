package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iruldev/golang-api-hexagonal/internal/domain"
	"github.com/iruldev/golang-api-hexagonal/internal/domain/route"
	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/httpx"
	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/response"
)

// RouteRefresher is notified after a route mutation so the matcher can
// rebuild its index without waiting for its periodic refresh.
type RouteRefresher interface {
	Refresh(ctx context.Context) error
}

// RouteHandlers serves the /admin/routes CRUD surface backed by the route
// repository and, optionally, a matcher to refresh immediately on write.
type RouteHandlers struct {
	repo     route.Repository
	refresh  RouteRefresher
}

// NewRouteHandlers builds the route admin handlers. refresh may be nil, in
// which case the matcher picks up changes on its own polling interval.
func NewRouteHandlers(repo route.Repository, refresh RouteRefresher) *RouteHandlers {
	return &RouteHandlers{repo: repo, refresh: refresh}
}

type routePayload struct {
	ServiceName            string   `json:"service_name"`
	PathPattern             string   `json:"path_pattern"`
	Method                  string   `json:"method"`
	Version                 string   `json:"version"`
	Active                  *bool    `json:"active"`
	RequiresAuth            bool     `json:"requires_auth"`
	RequiredPermissions     []string `json:"required_permissions"`
	PermissionStrategy      string   `json:"permission_strategy"`
	RateLimitRPM            int      `json:"rate_limit_rpm"`
	UpstreamTimeoutSeconds  int      `json:"upstream_timeout_seconds"`
	RetryCount              int      `json:"retry_count"`
	CircuitBreakerEnabled   bool     `json:"circuit_breaker_enabled"`
	CacheEnabled            bool     `json:"cache_enabled"`
	CacheTTLSeconds         int      `json:"cache_ttl_seconds"`
	LoadBalanceStrategy     string   `json:"load_balance_strategy"`
	Priority                int      `json:"priority"`
}

func (p routePayload) toRoute() *route.Route {
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	timeout := p.UpstreamTimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &route.Route{
		ServiceName:            p.ServiceName,
		PathPattern:            p.PathPattern,
		Method:                 p.Method,
		Version:                p.Version,
		Active:                 active,
		RequiresAuth:           p.RequiresAuth,
		RequiredPermissions:    p.RequiredPermissions,
		PermissionStrategy:     route.PermissionStrategy(p.PermissionStrategy),
		RateLimitRPM:           p.RateLimitRPM,
		UpstreamTimeoutSeconds: timeout,
		RetryCount:             p.RetryCount,
		CircuitBreakerEnabled:  p.CircuitBreakerEnabled,
		CacheEnabled:           p.CacheEnabled,
		CacheTTLSeconds:        p.CacheTTLSeconds,
		LoadBalanceStrategy:    route.LoadBalanceStrategy(p.LoadBalanceStrategy),
		Priority:               p.Priority,
	}
}

func (h *RouteHandlers) maybeRefresh(ctx context.Context) {
	if h.refresh == nil {
		return
	}
	_ = h.refresh.Refresh(ctx)
}

// Create handles POST /admin/routes.
func (h *RouteHandlers) Create(w http.ResponseWriter, r *http.Request) error {
	var payload routePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return domain.NewError(domain.KindValidationError, "invalid request body")
	}
	rt := payload.toRoute()
	if err := rt.Validate(); err != nil {
		return domain.Wrap(domain.KindValidationError, err.Error(), err)
	}
	if err := h.repo.Create(r.Context(), rt); err != nil {
		return domain.Wrap(domain.KindInternalError, "failed to create route", err)
	}
	h.maybeRefresh(r.Context())
	response.SuccessWithStatus(w, http.StatusCreated, rt)
	return nil
}

// Get handles GET /admin/routes/{id}.
func (h *RouteHandlers) Get(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	rt, err := h.repo.Get(r.Context(), id)
	if err != nil {
		return routeGetError(err)
	}
	response.Success(w, rt)
	return nil
}

// List handles GET /admin/routes.
func (h *RouteHandlers) List(w http.ResponseWriter, r *http.Request) error {
	params := parseListParams(r)
	items, total, err := h.repo.List(r.Context(), params.Limit(), params.Offset())
	if err != nil {
		return domain.Wrap(domain.KindInternalError, "failed to list routes", err)
	}
	response.SuccessPage(w, items, pageNumber(params), params.Limit(), int(total))
	return nil
}

// Update handles PUT /admin/routes/{id}.
func (h *RouteHandlers) Update(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	existing, err := h.repo.Get(r.Context(), id)
	if err != nil {
		return routeGetError(err)
	}

	var payload routePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return domain.NewError(domain.KindValidationError, "invalid request body")
	}
	updated := payload.toRoute()
	updated.ID = existing.ID

	if err := updated.Validate(); err != nil {
		return domain.Wrap(domain.KindValidationError, err.Error(), err)
	}
	if err := h.repo.Update(r.Context(), updated); err != nil {
		return domain.Wrap(domain.KindInternalError, "failed to update route", err)
	}
	h.maybeRefresh(r.Context())
	response.Success(w, updated)
	return nil
}

// Delete handles DELETE /admin/routes/{id}. The repository treats this as
// a soft delete (Active=false), never a physical row removal.
func (h *RouteHandlers) Delete(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if err := h.repo.SoftDelete(r.Context(), id); err != nil {
		return routeGetError(err)
	}
	h.maybeRefresh(r.Context())
	response.Success(w, map[string]string{"id": id, "status": "deactivated"})
	return nil
}

func routeGetError(err error) error {
	if err == route.ErrRouteNotFound {
		return domain.Wrap(domain.KindRouteNotFound, "route not found", err)
	}
	return domain.Wrap(domain.KindInternalError, "route lookup failed", err)
}

// parseListParams reads page/page_size query parameters, defaulting via
// domain.ListParams' own rules when absent or invalid.
func parseListParams(r *http.Request) domain.ListParams {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	return domain.ListParams{Page: page, PageSize: pageSize}
}

func pageNumber(p domain.ListParams) int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// RegisterRouteRoutes mounts the route CRUD handlers on r under the path
// it is called with (e.g. "/routes").
func RegisterRouteRoutes(r chi.Router, h *RouteHandlers) {
	r.Post("/", httpx.WrapHandler(h.Create))
	r.Get("/", httpx.WrapHandler(h.List))
	r.Get("/{id}", httpx.WrapHandler(h.Get))
	r.Put("/{id}", httpx.WrapHandler(h.Update))
	r.Delete("/{id}", httpx.WrapHandler(h.Delete))
}
