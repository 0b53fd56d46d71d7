package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	audithttp "github.com/erashu/erashu-admin/internal/audit/http"
	"github.com/erashu/erashu-admin/internal/auth"
	"github.com/erashu/erashu-admin/internal/platform/httpx"
	"github.com/erashu/erashu-admin/internal/rbac"
	"github.com/erashu/erashu-admin/internal/roles"
	"github.com/erashu/erashu-admin/internal/shared"
	"github.com/erashu/erashu-admin/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	CSRFManager        *shared.CSRFManager
	Guard              *rbac.Guard
	PermissionCache    *rbac.SessionPermissionCache
	AuthHandler        *auth.Handler
	RolesHandler       *roles.Handler
	UsersHandler       *users.Handler
	PermissionsHandler *rbac.PermissionsHandler
	AuditHandler       *audithttp.Handler
}

// NewRouter constructs the chi.Router with admin defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route(params.Config.AdminBasePath, func(ar chi.Router) {
		// Session bootstrap: the panel fetches its CSRF token and current
		// identity from here before anything else.
		ar.Get("/session", func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
			payload := map[string]any{"csrf_token": csrfToken}
			if identity, ok := shared.IdentityFromContext(r.Context()); ok {
				payload["user_id"] = identity.UserID
				payload["role_tag"] = identity.RoleTag
			}
			httpx.JSON(w, http.StatusOK, payload)
		})

		// Login is always reachable.
		params.AuthHandler.MountRoutes(ar)

		// Neutral landing state for denied navigations. Deliberately says
		// nothing about which permission was missing.
		ar.Get("/unauthorized", func(w http.ResponseWriter, r *http.Request) {
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				sess.PopFlash()
			}
			httpx.JSON(w, http.StatusOK, map[string]any{"unauthorized": true})
		})

		ar.Group(func(g chi.Router) {
			g.Use(params.Guard.NavigationMiddleware(params.PermissionCache))

			g.Get("/", func(w http.ResponseWriter, r *http.Request) {
				httpx.JSON(w, http.StatusOK, map[string]any{"dashboard": true})
			})

			g.Route("/roles", params.RolesHandler.MountRoutes)
			g.Route("/users", params.UsersHandler.MountRoutes)
			g.Route("/permissions", params.PermissionsHandler.MountRoutes)
			g.Route("/audit", params.AuditHandler.MountRoutes)
		})
	})

	return r
}
