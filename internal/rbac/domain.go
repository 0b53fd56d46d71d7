package rbac

import "sort"

// Module groups catalog permissions by admin panel section.
type Module string

// Catalog modules. Fixed at deploy time.
const (
	ModuleDashboard Module = "DASHBOARD"
	ModuleUsers     Module = "USERS"
	ModuleProducts  Module = "PRODUCTS"
	ModuleOrders    Module = "ORDERS"
	ModuleSettings  Module = "SETTINGS"
	ModuleSystem    Module = "SYSTEM"
)

// Permission represents an atomic capability in the catalog.
type Permission struct {
	ID          int64
	Key         string
	Module      Module
	Description string
}

// CoarseRole is the built-in role tag carried on every user, independent of
// any assignable Role row.
type CoarseRole string

const (
	RoleAdmin    CoarseRole = "ADMIN"
	RoleSubAdmin CoarseRole = "SUB_ADMIN"
	RoleAuthor   CoarseRole = "AUTHOR"
	RoleCustomer CoarseRole = "CUSTOMER"
	RoleEditor   CoarseRole = "EDITOR"
)

// ParseCoarseRole validates a stored role tag. Unknown tags degrade to
// CUSTOMER so a corrupted row never gains access it should not have.
func ParseCoarseRole(raw string) CoarseRole {
	switch CoarseRole(raw) {
	case RoleAdmin, RoleSubAdmin, RoleAuthor, RoleCustomer, RoleEditor:
		return CoarseRole(raw)
	default:
		return RoleCustomer
	}
}

// PermissionSet is a deduplicated collection of permission keys.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from the given keys.
func NewPermissionSet(keys ...string) PermissionSet {
	set := make(PermissionSet, len(keys))
	for _, k := range keys {
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// Has reports whether the set contains key.
func (s PermissionSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Add inserts keys into the set.
func (s PermissionSet) Add(keys ...string) {
	for _, k := range keys {
		if k != "" {
			s[k] = struct{}{}
		}
	}
}

// Keys returns the sorted key list, for stable serialization.
func (s PermissionSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
