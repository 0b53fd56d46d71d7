package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erashu/erashu-admin/internal/shared"
)

func middlewareFixture() Middleware {
	reader := &stubAccessReader{
		profiles:  map[int64]AccessProfile{1: {CoarseRole: RoleEditor, RoleID: ptr(2)}},
		rolePerms: map[int64][]string{2: {PermBlogView, PermBlogManage}},
	}
	return Middleware{Resolver: NewResolver(reader, NewCatalog())}
}

func serveGuarded(t *testing.T, wrap func(http.Handler) http.Handler, identity *shared.Identity) *httptest.ResponseRecorder {
	t.Helper()
	handler := wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/blog", nil)
	if identity != nil {
		req = req.WithContext(shared.ContextWithIdentity(req.Context(), *identity))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireAnyAllowsHolder(t *testing.T) {
	mw := middlewareFixture()
	rec := serveGuarded(t, mw.RequireAny(PermBlogView, PermUsersManage), &shared.Identity{UserID: 1, RoleTag: "EDITOR"})
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAnyRejectsMissingPermission(t *testing.T) {
	mw := middlewareFixture()
	rec := serveGuarded(t, mw.RequireAny(PermRolesManage), &shared.Identity{UserID: 1, RoleTag: "EDITOR"})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAnyRejectsAnonymous(t *testing.T) {
	mw := middlewareFixture()
	rec := serveGuarded(t, mw.RequireAny(PermBlogView), nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAllNeedsEveryPermission(t *testing.T) {
	mw := middlewareFixture()

	rec := serveGuarded(t, mw.RequireAll(PermBlogView, PermBlogManage), &shared.Identity{UserID: 1, RoleTag: "EDITOR"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serveGuarded(t, mw.RequireAll(PermBlogView, PermRolesManage), &shared.Identity{UserID: 1, RoleTag: "EDITOR"})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAllSeesFreshRoleEdits(t *testing.T) {
	reader := &stubAccessReader{
		profiles:  map[int64]AccessProfile{1: {CoarseRole: RoleEditor, RoleID: ptr(2)}},
		rolePerms: map[int64][]string{2: {PermBlogView}},
	}
	mw := Middleware{Resolver: NewResolver(reader, NewCatalog())}

	rec := serveGuarded(t, mw.RequireAll(PermBlogManage), &shared.Identity{UserID: 1, RoleTag: "EDITOR"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	reader.rolePerms[2] = []string{PermBlogView, PermBlogManage}

	rec = serveGuarded(t, mw.RequireAll(PermBlogManage), &shared.Identity{UserID: 1, RoleTag: "EDITOR"})
	require.Equal(t, http.StatusNoContent, rec.Code)
}
