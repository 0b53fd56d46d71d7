package users

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/erashu/erashu-admin/internal/platform/httpx"
	"github.com/erashu/erashu-admin/internal/rbac"
	"github.com/erashu/erashu-admin/internal/shared"
)

// AuditRecorder is the append-only sink for privileged mutations.
type AuditRecorder interface {
	Record(ctx context.Context, action string, actorID int64, targetUserID *int64, details map[string]any)
}

// Handler manages user management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	audit     AuditRecorder
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, audit AuditRecorder, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, audit: audit, rbac: rbacMW, validator: validator.New()}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermUsersView, rbac.PermUsersManage))
		r.Get("/", h.listUsers)
		r.Get("/{userID}", h.getUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermUsersManage))
		r.Put("/{userID}/role", h.assignRole)
		r.Post("/{userID}/permissions", h.grantOverride)
		r.Delete("/{userID}/permissions/{key}", h.revokeOverride)
	})
}

type userResponse struct {
	ID           int64    `json:"id"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	RoleTag      string   `json:"role_tag"`
	RoleID       *int64   `json:"role_id"`
	RoleName     string   `json:"role_name,omitempty"`
	OverrideKeys []string `json:"override_keys"`
	IsActive     bool     `json:"is_active"`
}

func toResponse(u User) userResponse {
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		RoleTag:      u.RoleTag,
		RoleID:       u.RoleID,
		RoleName:     u.RoleName,
		OverrideKeys: u.OverrideKeys,
		IsActive:     u.IsActive,
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]userResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toResponse(u))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": out})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(user))
}

type assignRolePayload struct {
	RoleID *int64 `json:"role_id"`
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	var payload assignRolePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.AssignRole(r.Context(), id, payload.RoleID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "user.assign_role", id, map[string]any{"role_id": payload.RoleID})
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

type overridePayload struct {
	Key string `json:"key" validate:"required"`
}

func (h *Handler) grantOverride(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	var payload overridePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.GrantOverride(r.Context(), id, payload.Key); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "user.grant_permission", id, map[string]any{"key": payload.Key})
	httpx.JSON(w, http.StatusOK, map[string]any{"granted": true})
}

func (h *Handler) revokeOverride(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")
	if err := h.service.RevokeOverride(r.Context(), id, key); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "user.revoke_permission", id, map[string]any{"key": key})
	httpx.JSON(w, http.StatusOK, map[string]any{"revoked": true})
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return 0, false
	}
	return id, true
}

func (h *Handler) recordAudit(r *http.Request, action string, targetUserID int64, details map[string]any) {
	if h.audit == nil {
		return
	}
	identity, _ := shared.IdentityFromContext(r.Context())
	h.audit.Record(r.Context(), action, identity.UserID, &targetUserID, details)
}
