package store

import (
	"context"
	"errors"
	"strings"

	"campusmate/api/internal/kv"
	"campusmate/api/internal/rbac"
)

var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateUSN      = errors.New("usn already registered")
)

// Users is the registered-account repository. Accounts are created at
// registration and never deleted.
type Users struct {
	kv *kv.Store
}

func NewUsers(store *kv.Store) *Users {
	return &Users{kv: store}
}

func (r *Users) List(ctx context.Context) []User {
	users := []User{}
	r.kv.ReadJSON(ctx, kv.KeyUsers, &users)
	for i := range users {
		users[i].Role = string(rbac.Normalize(users[i].Role))
	}
	return users
}

// GetByUsername looks up an account case-insensitively.
func (r *Users) GetByUsername(ctx context.Context, username string) (User, bool) {
	for _, u := range r.List(ctx) {
		if strings.EqualFold(u.Username, username) {
			return u, true
		}
	}
	return User{}, false
}

// Add appends a new account. Usernames are unique case-insensitively and
// USNs are unique when present.
func (r *Users) Add(ctx context.Context, user User) error {
	users := r.List(ctx)
	for _, existing := range users {
		if strings.EqualFold(existing.Username, user.Username) {
			return ErrDuplicateUsername
		}
		if user.USN != "" && strings.EqualFold(existing.USN, user.USN) {
			return ErrDuplicateUSN
		}
	}
	user.Role = string(rbac.Normalize(user.Role))
	users = append(users, user)
	return r.kv.WriteJSON(ctx, kv.KeyUsers, users)
}

// ReplaceAll overwrites the whole user table (replace-mode import).
func (r *Users) ReplaceAll(ctx context.Context, users []User) error {
	if users == nil {
		users = []User{}
	}
	for i := range users {
		users[i].Role = string(rbac.Normalize(users[i].Role))
	}
	return r.kv.WriteJSON(ctx, kv.KeyUsers, users)
}

// MergeNew appends only users whose username is not already present,
// comparing case-insensitively. Existing accounts are never touched.
func (r *Users) MergeNew(ctx context.Context, incoming []User) error {
	users := r.List(ctx)
	for _, candidate := range incoming {
		exists := false
		for _, existing := range users {
			if strings.EqualFold(existing.Username, candidate.Username) {
				exists = true
				break
			}
		}
		if !exists {
			candidate.Role = string(rbac.Normalize(candidate.Role))
			users = append(users, candidate)
		}
	}
	return r.kv.WriteJSON(ctx, kv.KeyUsers, users)
}
