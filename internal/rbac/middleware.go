package rbac

import (
	"log/slog"
	"net/http"

	"github.com/erashu/erashu-admin/internal/platform/httpx"
	"github.com/erashu/erashu-admin/internal/shared"
)

// Middleware wires server-side RBAC enforcement for HTTP handlers. Unlike
// the navigation Guard it re-resolves permissions on every request, so a
// mutating action is never authorized off a stale session cache.
type Middleware struct {
	Resolver *Resolver
	Logger   *slog.Logger
}

// RequireAny ensures the current user holds at least one required permission.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			granted, ok := m.granted(w, r)
			if !ok {
				return
			}
			for _, p := range perms {
				if granted.Has(p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.RespondError(w, httpx.ErrForbidden)
		})
	}
}

// RequireAll ensures the current user holds every required permission.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			granted, ok := m.granted(w, r)
			if !ok {
				return
			}
			for _, p := range perms {
				if !granted.Has(p) {
					httpx.RespondError(w, httpx.ErrForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) granted(w http.ResponseWriter, r *http.Request) (PermissionSet, bool) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return nil, false
	}
	granted, err := m.Resolver.EffectivePermissions(r.Context(), identity.UserID)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("rbac resolve permissions", slog.Any("error", err))
		}
		httpx.RespondError(w, httpx.ErrForbidden)
		return nil, false
	}
	return granted, true
}
