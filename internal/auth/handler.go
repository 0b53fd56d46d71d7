package auth

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/erashu/erashu-admin/internal/platform/httpx"
	"github.com/erashu/erashu-admin/internal/rbac"
	"github.com/erashu/erashu-admin/internal/shared"
)

// AuditRecorder is the append-only sink for auth events.
type AuditRecorder interface {
	Record(ctx context.Context, action string, actorID int64, targetUserID *int64, details map[string]any)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	permCache      *rbac.SessionPermissionCache
	audit          AuditRecorder
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, permCache *rbac.SessionPermissionCache, audit AuditRecorder) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		permCache:      permCache,
		audit:          audit,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", shared.UserSafeMessage(shared.ErrInvalidCredentials))
		return
	}

	user, err := h.service.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", shared.UserSafeMessage(shared.ErrInvalidCredentials))
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10), user.RoleTag)

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, clientIP(r), r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	// The resolved set is cached for the whole admin session; drop any
	// leftover entry from a previous login on this session ID first.
	if h.permCache != nil {
		if err := h.permCache.Invalidate(r.Context(), sess.ID); err != nil {
			h.logger.Warn("invalidate permission cache", slog.Any("error", err))
		}
		if err := h.permCache.Warm(r.Context(), sess.ID, user.ID); err != nil {
			h.logger.Warn("warm permission cache", slog.Any("error", err))
		}
	}

	if h.audit != nil {
		h.audit.Record(r.Context(), "auth.login", user.ID, nil, map[string]any{"email": user.Email})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{"id": user.ID, "email": user.Email, "name": user.Name, "role_tag": user.RoleTag},
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.JSON(w, http.StatusOK, map[string]any{"logged_out": true})
		return
	}
	identity, _ := shared.IdentityFromContext(r.Context())

	if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
		h.logger.Warn("remove session", slog.Any("error", err))
	}
	if h.permCache != nil {
		if err := h.permCache.Invalidate(r.Context(), sess.ID); err != nil {
			h.logger.Warn("invalidate permission cache", slog.Any("error", err))
		}
	}
	h.sessionManager.Destroy(sess)

	if h.audit != nil && identity.UserID != 0 {
		h.audit.Record(r.Context(), "auth.logout", identity.UserID, nil, nil)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"logged_out": true})
}

func clientIP(r *http.Request) string {
	// RealIP middleware rewrites RemoteAddr when forwarding headers are set.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
