package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iruldev/golang-api-hexagonal/internal/domain"
	"github.com/iruldev/golang-api-hexagonal/internal/domain/instance"
	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/httpx"
	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/response"
)

// ServiceHandlers serves the /admin/services CRUD surface for registered
// service instances.
type ServiceHandlers struct {
	repo instance.Repository
}

// NewServiceHandlers builds the service-instance admin handlers.
func NewServiceHandlers(repo instance.Repository) *ServiceHandlers {
	return &ServiceHandlers{repo: repo}
}

type instancePayload struct {
	ServiceName         string            `json:"service_name"`
	InstanceID          string            `json:"instance_id"`
	Host                string            `json:"host"`
	Port                int               `json:"port"`
	Protocol            string            `json:"protocol"`
	Weight              int               `json:"weight"`
	HealthCheckURL      string            `json:"health_check_url"`
	HealthCheckInterval time.Duration     `json:"health_check_interval"`
	Metadata            map[string]string `json:"metadata"`
}

func (p instancePayload) toInstance() *instance.Instance {
	return &instance.Instance{
		ServiceName:         p.ServiceName,
		InstanceID:          p.InstanceID,
		Host:                p.Host,
		Port:                p.Port,
		Protocol:            instance.Protocol(p.Protocol),
		Weight:              p.Weight,
		State:               instance.StateHealthy,
		HealthCheckURL:      p.HealthCheckURL,
		HealthCheckInterval: p.HealthCheckInterval,
		Metadata:            p.Metadata,
	}
}

// Create handles POST /admin/services.
func (h *ServiceHandlers) Create(w http.ResponseWriter, r *http.Request) error {
	var payload instancePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return domain.NewError(domain.KindValidationError, "invalid request body")
	}
	inst := payload.toInstance()
	if err := inst.Validate(); err != nil {
		return domain.Wrap(domain.KindValidationError, err.Error(), err)
	}
	if err := h.repo.Create(r.Context(), inst); err != nil {
		return domain.Wrap(domain.KindInternalError, "failed to register instance", err)
	}
	response.SuccessWithStatus(w, http.StatusCreated, inst)
	return nil
}

// Get handles GET /admin/services/{id}.
func (h *ServiceHandlers) Get(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	inst, err := h.repo.Get(r.Context(), id)
	if err != nil {
		return instanceGetError(err)
	}
	response.Success(w, inst)
	return nil
}

// List handles GET /admin/services.
func (h *ServiceHandlers) List(w http.ResponseWriter, r *http.Request) error {
	serviceName := r.URL.Query().Get("service_name")
	if serviceName != "" {
		items, err := h.repo.ListByService(r.Context(), serviceName)
		if err != nil {
			return domain.Wrap(domain.KindInternalError, "failed to list instances", err)
		}
		response.Success(w, items)
		return nil
	}

	params := parseListParams(r)
	items, total, err := h.repo.List(r.Context(), params.Limit(), params.Offset())
	if err != nil {
		return domain.Wrap(domain.KindInternalError, "failed to list instances", err)
	}
	response.SuccessPage(w, items, pageNumber(params), params.Limit(), int(total))
	return nil
}

// Delete handles DELETE /admin/services/{id}, deregistering the instance
// entirely.
func (h *ServiceHandlers) Delete(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		return instanceGetError(err)
	}
	response.Success(w, map[string]string{"id": id, "status": "deregistered"})
	return nil
}

func instanceGetError(err error) error {
	if err == instance.ErrInstanceNotFound {
		return domain.Wrap(domain.KindRouteNotFound, "instance not found", err)
	}
	return domain.Wrap(domain.KindInternalError, "instance lookup failed", err)
}

// RegisterServiceRoutes mounts the service-instance CRUD handlers on r.
func RegisterServiceRoutes(r chi.Router, h *ServiceHandlers) {
	r.Post("/", httpx.WrapHandler(h.Create))
	r.Get("/", httpx.WrapHandler(h.List))
	r.Get("/{id}", httpx.WrapHandler(h.Get))
	r.Delete("/{id}", httpx.WrapHandler(h.Delete))
}
