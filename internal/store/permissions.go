package store

import (
	"context"

	"campusmate/api/internal/kv"
)

type Permissions struct {
	kv *kv.Store
}

func NewPermissions(store *kv.Store) *Permissions {
	return &Permissions{kv: store}
}

func (r *Permissions) List(ctx context.Context) []Permission {
	permissions := []Permission{}
	r.kv.ReadJSON(ctx, kv.KeyPermissions, &permissions)
	for i := range permissions {
		permissions[i] = NormalizePermission(permissions[i], "")
	}
	return permissions
}

func (r *Permissions) GetByID(ctx context.Context, id string) (Permission, bool) {
	for _, p := range r.List(ctx) {
		if p.ID == id {
			return p, true
		}
	}
	return Permission{}, false
}

func (r *Permissions) Add(ctx context.Context, permission Permission) (Permission, error) {
	permission = NormalizePermission(permission, permission.UploadedBy)
	permissions := r.List(ctx)
	permissions = append(permissions, permission)
	return permission, r.kv.WriteJSON(ctx, kv.KeyPermissions, permissions)
}

func (r *Permissions) DeleteByID(ctx context.Context, id string) (bool, error) {
	permissions := r.List(ctx)
	for i := range permissions {
		if permissions[i].ID == id {
			permissions = append(permissions[:i], permissions[i+1:]...)
			return true, r.kv.WriteJSON(ctx, kv.KeyPermissions, permissions)
		}
	}
	return false, nil
}
