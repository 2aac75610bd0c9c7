package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iruldev/golang-api-hexagonal/internal/domain"
	"github.com/iruldev/golang-api-hexagonal/internal/domain/permission"
	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/httpx"
	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/response"
)

// PermissionHandlers serves the /admin/permissions surface: the
// permission catalogue plus role grants.
type PermissionHandlers struct {
	repo permission.Repository
}

// NewPermissionHandlers builds the permission admin handlers.
func NewPermissionHandlers(repo permission.Repository) *PermissionHandlers {
	return &PermissionHandlers{repo: repo}
}

type permissionPayload struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Create handles POST /admin/permissions, adding a permission to the
// catalogue.
func (h *PermissionHandlers) Create(w http.ResponseWriter, r *http.Request) error {
	var payload permissionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return domain.NewError(domain.KindValidationError, "invalid request body")
	}
	if payload.Code == "" {
		return domain.NewError(domain.KindValidationError, "code is required")
	}
	p := &permission.Permission{Code: payload.Code, Description: payload.Description}
	if err := h.repo.CreatePermission(r.Context(), p); err != nil {
		return domain.Wrap(domain.KindInternalError, "failed to create permission", err)
	}
	response.SuccessWithStatus(w, http.StatusCreated, p)
	return nil
}

// List handles GET /admin/permissions.
func (h *PermissionHandlers) List(w http.ResponseWriter, r *http.Request) error {
	items, err := h.repo.ListPermissions(r.Context())
	if err != nil {
		return domain.Wrap(domain.KindInternalError, "failed to list permissions", err)
	}
	response.Success(w, items)
	return nil
}

type grantPayload struct {
	UserID         string     `json:"user_id"`
	Role           string     `json:"role"`
	PermissionCode string     `json:"permission_code"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// Grant handles POST /admin/permissions/grants, binding a permission code
// to a role for a specific user.
func (h *PermissionHandlers) Grant(w http.ResponseWriter, r *http.Request) error {
	var payload grantPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return domain.NewError(domain.KindValidationError, "invalid request body")
	}
	if payload.UserID == "" || payload.Role == "" || payload.PermissionCode == "" {
		return domain.NewError(domain.KindValidationError, "user_id, role, and permission_code are required")
	}
	g := &permission.Grant{
		UserID:         payload.UserID,
		Role:           payload.Role,
		PermissionCode: payload.PermissionCode,
		ExpiresAt:      payload.ExpiresAt,
	}
	if err := h.repo.GrantToUser(r.Context(), g); err != nil {
		return domain.Wrap(domain.KindInternalError, "failed to grant permission", err)
	}
	response.SuccessWithStatus(w, http.StatusCreated, g)
	return nil
}

// Revoke handles DELETE /admin/permissions/grants, removing a user's grant
// of a permission code under a role.
func (h *PermissionHandlers) Revoke(w http.ResponseWriter, r *http.Request) error {
	userID := r.URL.Query().Get("user_id")
	role := r.URL.Query().Get("role")
	code := r.URL.Query().Get("permission_code")
	if userID == "" || role == "" || code == "" {
		return domain.NewError(domain.KindValidationError, "user_id, role, and permission_code query params are required")
	}
	if err := h.repo.RevokeFromUser(r.Context(), userID, role, code); err != nil {
		return domain.Wrap(domain.KindInternalError, "failed to revoke permission", err)
	}
	response.Success(w, map[string]string{"status": "revoked"})
	return nil
}

// RegisterPermissionRoutes mounts the permission catalogue and grant
// handlers on r.
func RegisterPermissionRoutes(r chi.Router, h *PermissionHandlers) {
	r.Post("/", httpx.WrapHandler(h.Create))
	r.Get("/", httpx.WrapHandler(h.List))
	r.Post("/grants", httpx.WrapHandler(h.Grant))
	r.Delete("/grants", httpx.WrapHandler(h.Revoke))
}
