package rbac

import (
	"context"
	"log/slog"
	"sort"
)

// Permission keys recognized by the admin panel. Handlers reference these
// constants instead of repeating string literals.
const (
	PermDashboardView  = "dashboard_view"
	PermBlogView       = "blog_view"
	PermBlogManage     = "blog_manage"
	PermUsersView      = "users_view"
	PermUsersManage    = "users_manage"
	PermRolesManage    = "roles_manage"
	PermProductsView   = "products_view"
	PermProductsManage = "products_manage"
	PermSTLView        = "stl_view"
	PermSTLManage      = "stl_manage"
	PermOrdersView     = "orders_view"
	PermOrdersManage   = "orders_manage"
	PermSettingsView   = "settings_view"
	PermSettingsManage = "settings_manage"
	PermQRManage       = "qr_manage"
	PermAdsManage      = "ads_manage"
	PermAuditView      = "audit_view"
	PermSystemTools    = "system_tools"
)

// catalogEntries is the deploy-time permission table. New permissions are a
// code change followed by a boot-time seed, never a runtime API.
var catalogEntries = []Permission{
	{Key: PermDashboardView, Module: ModuleDashboard, Description: "Yönetim paneli ana sayfasını görüntüleme"},
	{Key: PermBlogView, Module: ModuleDashboard, Description: "Blog yazılarını görüntüleme"},
	{Key: PermBlogManage, Module: ModuleDashboard, Description: "Blog yazılarını oluşturma ve düzenleme"},
	{Key: PermUsersView, Module: ModuleUsers, Description: "Kullanıcı listesini görüntüleme"},
	{Key: PermUsersManage, Module: ModuleUsers, Description: "Kullanıcı hesaplarını yönetme"},
	{Key: PermRolesManage, Module: ModuleUsers, Description: "Rolleri ve yetkilerini yönetme"},
	{Key: PermProductsView, Module: ModuleProducts, Description: "Ürünleri görüntüleme"},
	{Key: PermProductsManage, Module: ModuleProducts, Description: "Ürünleri oluşturma ve düzenleme"},
	{Key: PermSTLView, Module: ModuleProducts, Description: "STL modellerini görüntüleme"},
	{Key: PermSTLManage, Module: ModuleProducts, Description: "STL modellerini yönetme"},
	{Key: PermOrdersView, Module: ModuleOrders, Description: "Siparişleri görüntüleme"},
	{Key: PermOrdersManage, Module: ModuleOrders, Description: "Siparişleri yönetme"},
	{Key: PermSettingsView, Module: ModuleSettings, Description: "Site ayarlarını görüntüleme"},
	{Key: PermSettingsManage, Module: ModuleSettings, Description: "Site ayarlarını düzenleme"},
	{Key: PermQRManage, Module: ModuleSettings, Description: "QR kod araçlarını yönetme"},
	{Key: PermAdsManage, Module: ModuleSettings, Description: "Reklam alanlarını yönetme"},
	{Key: PermAuditView, Module: ModuleSystem, Description: "Denetim kayıtlarını görüntüleme"},
	{Key: PermSystemTools, Module: ModuleSystem, Description: "Sistem araçlarına erişim"},
}

// Catalog exposes the fixed permission table.
type Catalog struct{}

// NewCatalog returns the process-wide catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// List returns all catalog permissions ordered by module name ascending.
// The sort is stable, so entries keep their table order within a module.
func (c *Catalog) List() []Permission {
	out := make([]Permission, len(catalogEntries))
	copy(out, catalogEntries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Module < out[j].Module
	})
	return out
}

// Keys returns the full permission set. This is what an ADMIN resolves to,
// so super-admin power automatically tracks catalog growth.
func (c *Catalog) Keys() PermissionSet {
	set := make(PermissionSet, len(catalogEntries))
	for _, e := range catalogEntries {
		set[e.Key] = struct{}{}
	}
	return set
}

// Contains reports whether key exists in the catalog.
func (c *Catalog) Contains(key string) bool {
	return c.Keys().Has(key)
}

// CatalogStore persists catalog rows.
type CatalogStore interface {
	CreatePermissionIfAbsent(ctx context.Context, p Permission) error
}

// Seeder writes the static catalog into the store on boot.
type Seeder struct {
	catalog *Catalog
	store   CatalogStore
	logger  *slog.Logger
}

// NewSeeder constructs a Seeder.
func NewSeeder(catalog *Catalog, store CatalogStore, logger *slog.Logger) *Seeder {
	return &Seeder{catalog: catalog, store: store, logger: logger}
}

// EnsureSeeded creates any missing catalog rows. Existing rows are never
// overwritten, so it is safe to call on every boot.
func (s *Seeder) EnsureSeeded(ctx context.Context) error {
	for _, entry := range s.catalog.List() {
		if err := s.store.CreatePermissionIfAbsent(ctx, entry); err != nil {
			return err
		}
	}
	if s.logger != nil {
		s.logger.Info("permission catalog seeded", slog.Int("entries", len(catalogEntries)))
	}
	return nil
}
