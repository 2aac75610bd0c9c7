package admin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iruldev/golang-api-hexagonal/internal/domain"
	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/httpx"
	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/response"
)

// BatchResult reports the outcome of one item in a batch admin operation.
// Items are applied independently; one failure never aborts the rest.
type BatchResult struct {
	Index   int    `json:"index"`
	ID      string `json:"id,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchHandlers serves the /admin/batch bulk-import surface for routes and
// service instances.
type BatchHandlers struct {
	routes   *RouteHandlers
	services *ServiceHandlers
}

// NewBatchHandlers builds the batch admin handlers from the same
// repositories backing the singular CRUD handlers.
func NewBatchHandlers(routes *RouteHandlers, services *ServiceHandlers) *BatchHandlers {
	return &BatchHandlers{routes: routes, services: services}
}

// Routes handles POST /admin/batch/routes: create many routes in one
// request, reporting a per-item result instead of failing the whole batch
// on the first invalid entry.
func (h *BatchHandlers) Routes(w http.ResponseWriter, r *http.Request) error {
	var payloads []routePayload
	if err := json.NewDecoder(r.Body).Decode(&payloads); err != nil {
		return domain.NewError(domain.KindValidationError, "invalid request body")
	}
	if len(payloads) == 0 {
		return domain.NewError(domain.KindValidationError, "batch must contain at least one route")
	}

	results := make([]BatchResult, len(payloads))
	for i, payload := range payloads {
		rt := payload.toRoute()
		if err := rt.Validate(); err != nil {
			results[i] = BatchResult{Index: i, Success: false, Error: err.Error()}
			continue
		}
		if err := h.routes.repo.Create(r.Context(), rt); err != nil {
			results[i] = BatchResult{Index: i, Success: false, Error: err.Error()}
			continue
		}
		results[i] = BatchResult{Index: i, ID: rt.ID, Success: true}
	}
	h.routes.maybeRefresh(r.Context())
	response.SuccessWithStatus(w, http.StatusCreated, results)
	return nil
}

// Services handles POST /admin/batch/services: register many service
// instances in one request.
func (h *BatchHandlers) Services(w http.ResponseWriter, r *http.Request) error {
	var payloads []instancePayload
	if err := json.NewDecoder(r.Body).Decode(&payloads); err != nil {
		return domain.NewError(domain.KindValidationError, "invalid request body")
	}
	if len(payloads) == 0 {
		return domain.NewError(domain.KindValidationError, "batch must contain at least one instance")
	}

	results := make([]BatchResult, len(payloads))
	for i, payload := range payloads {
		inst := payload.toInstance()
		if err := inst.Validate(); err != nil {
			results[i] = BatchResult{Index: i, Success: false, Error: err.Error()}
			continue
		}
		if err := h.services.repo.Create(r.Context(), inst); err != nil {
			results[i] = BatchResult{Index: i, Success: false, Error: err.Error()}
			continue
		}
		results[i] = BatchResult{Index: i, ID: inst.ID, Success: true}
	}
	response.SuccessWithStatus(w, http.StatusCreated, results)
	return nil
}

// RegisterBatchRoutes mounts the bulk-import handlers on r.
func RegisterBatchRoutes(r chi.Router, h *BatchHandlers) {
	r.Post("/routes", httpx.WrapHandler(h.Routes))
	r.Post("/services", httpx.WrapHandler(h.Services))
}
