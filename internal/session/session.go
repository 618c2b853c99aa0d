// Package session tracks the single authenticated user as one persisted
// record. No expiry, no multi-session: the last Set wins.
package session

import (
	"context"

	"campusmate/api/internal/kv"
	"campusmate/api/internal/store"
)

type Manager struct {
	kv *kv.Store
}

func NewManager(kvStore *kv.Store) *Manager {
	return &Manager{kv: kvStore}
}

// Get returns the current user, or nil when no session exists (including a
// corrupt session record, which degrades to logged-out).
func (m *Manager) Get(ctx context.Context) *store.User {
	var user *store.User
	m.kv.ReadJSON(ctx, kv.KeySession, &user)
	if user == nil || user.Username == "" {
		return nil
	}
	return user
}

func (m *Manager) Set(ctx context.Context, user store.User) error {
	return m.kv.WriteJSON(ctx, kv.KeySession, user)
}

func (m *Manager) Clear(ctx context.Context) error {
	return m.kv.Delete(ctx, kv.KeySession)
}
