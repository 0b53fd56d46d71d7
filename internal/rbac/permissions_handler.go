package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erashu/erashu-admin/internal/platform/httpx"
)

// PermissionsHandler exposes the read-only catalog listing.
type PermissionsHandler struct {
	catalog *Catalog
	rbac    Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(catalog *Catalog, rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{catalog: catalog, rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(PermRolesManage, PermUsersManage))
		r.Get("/", h.listPermissions)
	})
}

type permissionResponse struct {
	Key         string `json:"key"`
	Module      string `json:"module"`
	Description string `json:"description"`
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	entries := h.catalog.List()
	out := make([]permissionResponse, 0, len(entries))
	for _, p := range entries {
		out = append(out, permissionResponse{Key: p.Key, Module: string(p.Module), Description: p.Description})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": out})
}
