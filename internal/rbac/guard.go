package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/erashu/erashu-admin/internal/shared"
)

// GuardRule maps an admin path prefix to the permission key it requires.
// An empty Permission means the path only needs an authenticated session.
type GuardRule struct {
	Prefix     string
	Permission string
}

// DefaultGuardRules is the ordered rule table for the admin area. Matching
// is first-match-wins, so more specific prefixes come first.
func DefaultGuardRules() []GuardRule {
	return []GuardRule{
		{Prefix: "/roles", Permission: PermRolesManage},
		{Prefix: "/users", Permission: PermUsersManage},
		{Prefix: "/products", Permission: PermProductsView},
		{Prefix: "/stl", Permission: PermSTLView},
		{Prefix: "/orders", Permission: PermOrdersView},
		{Prefix: "/blog", Permission: PermBlogView},
		{Prefix: "/settings", Permission: PermSettingsManage},
		{Prefix: "/ads", Permission: PermAdsManage},
		{Prefix: "/qr", Permission: PermQRManage},
		{Prefix: "/audit", Permission: PermAuditView},
		{Prefix: "/tools", Permission: PermSystemTools},
	}
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed  bool
	Required string
}

// Guard gates navigation inside the admin area.
//
// This is advisory, UX-level gating: it decides which sections the panel
// shows and where denied navigations land. It is not the security boundary.
// Mutating handlers carry their own Middleware check server-side.
type Guard struct {
	basePath string
	rules    []GuardRule
	logger   *slog.Logger
}

// NewGuard constructs a Guard for the given admin base path.
func NewGuard(basePath string, rules []GuardRule, logger *slog.Logger) *Guard {
	return &Guard{basePath: strings.TrimRight(basePath, "/"), rules: rules, logger: logger}
}

// RequiredPermission returns the permission key the path needs, if any.
// path is relative to the admin base. The login and unauthorized pages are
// always open; unmatched paths require no specific permission.
func (g *Guard) RequiredPermission(path string) (string, bool) {
	if path == "" || path == "/" {
		return PermDashboardView, true
	}
	if path == loginPath || path == unauthorizedPath {
		return "", false
	}
	for _, rule := range g.rules {
		if pathHasPrefix(path, rule.Prefix) {
			if rule.Permission == "" {
				return "", false
			}
			return rule.Permission, true
		}
	}
	return "", false
}

// pathHasPrefix matches on segment boundaries: "/roles" covers "/roles" and
// "/roles/new" but not "/rolesx".
func pathHasPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Check decides whether a caller holding perms may navigate to path.
func (g *Guard) Check(path string, perms PermissionSet) Decision {
	required, ok := g.RequiredPermission(path)
	if !ok {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: perms.Has(required), Required: required}
}

const (
	loginPath        = "/login"
	unauthorizedPath = "/unauthorized"
)

// LoginURL returns the absolute login path for redirects.
func (g *Guard) LoginURL() string { return g.basePath + loginPath }

// UnauthorizedURL returns the neutral landing page for denied navigations.
func (g *Guard) UnauthorizedURL() string { return g.basePath + unauthorizedPath }

// relativePath strips the admin base from the request path.
func (g *Guard) relativePath(full string) string {
	rel := strings.TrimPrefix(full, g.basePath)
	if rel == "" {
		return "/"
	}
	return rel
}

// NavigationMiddleware enforces the rule table over the admin area using the
// session-cached permission set. Denied navigations redirect to the neutral
// unauthorized page; the missing key is never revealed to the client.
func (g *Guard) NavigationMiddleware(cache *SessionPermissionCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rel := g.relativePath(r.URL.Path)
			if rel == loginPath || rel == unauthorizedPath {
				next.ServeHTTP(w, r)
				return
			}

			sess := shared.SessionFromContext(r.Context())
			identity, ok := shared.IdentityFromContext(r.Context())
			if !ok {
				http.Redirect(w, r, g.LoginURL(), http.StatusSeeOther)
				return
			}

			sessionID := ""
			if sess != nil {
				sessionID = sess.ID
			}
			perms, err := cache.Permissions(r.Context(), sessionID, identity.UserID)
			if err != nil {
				if g.logger != nil {
					g.logger.Error("guard resolve permissions", slog.Any("error", err))
				}
				// Fail closed: no permissions.
				perms = NewPermissionSet()
			}

			if decision := g.Check(rel, perms); !decision.Allowed {
				if sess != nil {
					sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Bu bölüme erişim yetkiniz yok"})
				}
				http.Redirect(w, r, g.UnauthorizedURL(), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
