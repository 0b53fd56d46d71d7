package roles

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erashu/erashu-admin/internal/platform/httpx"
	"github.com/erashu/erashu-admin/internal/rbac"
)

type fakeRepository struct {
	roles       map[int64]Role
	nextID      int64
	permissions map[string]int64

	createErr error
	updateErr error

	createCalls int
	updateCalls int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		roles:  make(map[int64]Role),
		nextID: 1,
		permissions: map[string]int64{
			rbac.PermBlogView:    1,
			rbac.PermBlogManage:  2,
			rbac.PermOrdersView:  3,
			rbac.PermRolesManage: 4,
		},
	}
}

func (f *fakeRepository) ListRoles(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(f.roles))
	for _, r := range f.roles {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRepository) GetRole(ctx context.Context, id int64) (Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return Role{}, httpx.ErrNotFound
	}
	return r, nil
}

func (f *fakeRepository) CreateRole(ctx context.Context, name, description string, permissionIDs []int64) (Role, error) {
	f.createCalls++
	if f.createErr != nil {
		return Role{}, f.createErr
	}
	for _, r := range f.roles {
		if r.Name == name {
			return Role{}, httpx.ErrDuplicate
		}
	}
	role := Role{ID: f.nextID, Name: name, Description: description, PermissionKeys: f.keysFor(permissionIDs)}
	f.roles[role.ID] = role
	f.nextID++
	return role, nil
}

func (f *fakeRepository) UpdateRole(ctx context.Context, id int64, name, description string, permissionIDs []int64) (Role, error) {
	f.updateCalls++
	if f.updateErr != nil {
		return Role{}, f.updateErr
	}
	role, ok := f.roles[id]
	if !ok {
		return Role{}, httpx.ErrNotFound
	}
	role.Name = name
	role.Description = description
	role.PermissionKeys = f.keysFor(permissionIDs)
	f.roles[id] = role
	return role, nil
}

func (f *fakeRepository) DeleteRole(ctx context.Context, id int64) error {
	if _, ok := f.roles[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(f.roles, id)
	return nil
}

func (f *fakeRepository) PermissionIDsByKey(ctx context.Context, keys []string) (map[string]int64, error) {
	out := make(map[string]int64, len(keys))
	for _, k := range keys {
		if id, ok := f.permissions[k]; ok {
			out[k] = id
		}
	}
	return out, nil
}

func (f *fakeRepository) keysFor(ids []int64) []string {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		for k, v := range f.permissions {
			if v == id {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func newServiceFixture() (*Service, *fakeRepository) {
	repo := newFakeRepository()
	return NewService(repo, rbac.NewCatalog()), repo
}

func TestCreateRejectsEmptyName(t *testing.T) {
	svc, repo := newServiceFixture()

	_, err := svc.Create(context.Background(), RoleInput{Name: "   "})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Zero(t, repo.createCalls, "validation failure must not reach the repository")
}

func TestCreateRejectsUnknownPermissionKey(t *testing.T) {
	svc, repo := newServiceFixture()

	_, err := svc.Create(context.Background(), RoleInput{
		Name:           "İçerik Editörü",
		PermissionKeys: []string{rbac.PermBlogView, "launch_rockets"},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Zero(t, repo.createCalls)
}

func TestCreateRejectsUnseededPermission(t *testing.T) {
	svc, repo := newServiceFixture()
	delete(repo.permissions, rbac.PermBlogView)

	_, err := svc.Create(context.Background(), RoleInput{
		Name:           "İçerik Editörü",
		PermissionKeys: []string{rbac.PermBlogView},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Zero(t, repo.createCalls)
}

func TestCreateDeduplicatesKeys(t *testing.T) {
	svc, _ := newServiceFixture()

	role, err := svc.Create(context.Background(), RoleInput{
		Name:           "İçerik Editörü",
		PermissionKeys: []string{rbac.PermBlogView, rbac.PermBlogView, " " + rbac.PermBlogManage + " "},
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{rbac.PermBlogView, rbac.PermBlogManage}, role.PermissionKeys)
}

func TestCreateDuplicateNameSurfacesConflict(t *testing.T) {
	svc, _ := newServiceFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, RoleInput{Name: "Sipariş Yöneticisi"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, RoleInput{Name: "Sipariş Yöneticisi"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestUpdateReplacesPermissionSet(t *testing.T) {
	svc, _ := newServiceFixture()
	ctx := context.Background()

	role, err := svc.Create(ctx, RoleInput{
		Name:           "İçerik Editörü",
		PermissionKeys: []string{rbac.PermBlogView, rbac.PermBlogManage},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, role.ID, RoleInput{
		Name:           "İçerik Editörü",
		PermissionKeys: []string{rbac.PermOrdersView},
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{rbac.PermOrdersView}, updated.PermissionKeys)
}

func TestUpdateFailureKeepsOldSet(t *testing.T) {
	svc, repo := newServiceFixture()
	ctx := context.Background()

	role, err := svc.Create(ctx, RoleInput{
		Name:           "İçerik Editörü",
		PermissionKeys: []string{rbac.PermBlogView},
	})
	require.NoError(t, err)

	repo.updateErr = errors.New("connection reset")
	_, err = svc.Update(ctx, role.ID, RoleInput{
		Name:           "İçerik Editörü",
		PermissionKeys: []string{rbac.PermOrdersView},
	})
	require.Error(t, err)

	current, err := svc.Get(ctx, role.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{rbac.PermBlogView}, current.PermissionKeys)
}

func TestUpdateMissingRole(t *testing.T) {
	svc, _ := newServiceFixture()

	_, err := svc.Update(context.Background(), 404, RoleInput{Name: "Hayalet"})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestListSortsWithTurkishCollation(t *testing.T) {
	svc, _ := newServiceFixture()
	ctx := context.Background()

	for _, name := range []string{"Ürün Editörü", "Çeviri Ekibi", "Admin Asistanı", "Sipariş Yöneticisi"} {
		_, err := svc.Create(ctx, RoleInput{Name: name})
		require.NoError(t, err)
	}

	roles, err := svc.List(ctx)
	require.NoError(t, err)

	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	require.Equal(t, []string{"Admin Asistanı", "Çeviri Ekibi", "Sipariş Yöneticisi", "Ürün Editörü"}, names)
}

func TestDeleteRole(t *testing.T) {
	svc, _ := newServiceFixture()
	ctx := context.Background()

	role, err := svc.Create(ctx, RoleInput{Name: "Geçici Rol"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, role.ID))

	_, err = svc.Get(ctx, role.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
