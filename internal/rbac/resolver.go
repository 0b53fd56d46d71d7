package rbac

import "context"

// authorFloor is the built-in pseudo-role for AUTHOR users. It is not a Role
// row; a freshly provisioned author keeps blog access even when no Role has
// been configured yet.
var authorFloor = []string{PermBlogView, PermDashboardView}

// AccessReader loads the pieces of a user's access data. The resolver calls
// each method only when its branch needs it.
type AccessReader interface {
	// UserAccessProfile returns the coarse role tag and optional Role
	// reference. found is false when the user does not exist.
	UserAccessProfile(ctx context.Context, userID int64) (profile AccessProfile, found bool, err error)
	// RolePermissionKeys returns the permission keys owned by a role. A
	// missing role yields an empty slice, not an error.
	RolePermissionKeys(ctx context.Context, roleID int64) ([]string, error)
	// OverrideKeys returns the user's direct permission grants.
	OverrideKeys(ctx context.Context, userID int64) ([]string, error)
}

// AccessProfile is the RBAC-relevant subset of a user row.
type AccessProfile struct {
	CoarseRole CoarseRole
	RoleID     *int64
}

// Resolver computes effective permission sets.
type Resolver struct {
	reader  AccessReader
	catalog *Catalog
}

// NewResolver constructs a Resolver.
func NewResolver(reader AccessReader, catalog *Catalog) *Resolver {
	return &Resolver{reader: reader, catalog: catalog}
}

// EffectivePermissions computes the permission set for a user.
//
// Resolution order, short-circuiting:
//  1. unknown user resolves to the empty set, never an error, so access
//     checks fail closed instead of breaking a render path;
//  2. ADMIN resolves to the full current catalog regardless of Role or
//     overrides;
//  3. AUTHOR resolves to the fixed author floor, again without consulting
//     Role or override data;
//  4. everyone else gets their Role's permissions unioned with their
//     direct overrides.
func (r *Resolver) EffectivePermissions(ctx context.Context, userID int64) (PermissionSet, error) {
	profile, found, err := r.reader.UserAccessProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return NewPermissionSet(), nil
	}

	switch profile.CoarseRole {
	case RoleAdmin:
		return r.catalog.Keys(), nil
	case RoleAuthor:
		return NewPermissionSet(authorFloor...), nil
	}

	set := NewPermissionSet()
	if profile.RoleID != nil {
		keys, err := r.reader.RolePermissionKeys(ctx, *profile.RoleID)
		if err != nil {
			return nil, err
		}
		set.Add(keys...)
	}
	overrides, err := r.reader.OverrideKeys(ctx, userID)
	if err != nil {
		return nil, err
	}
	set.Add(overrides...)
	return set, nil
}
