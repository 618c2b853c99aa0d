package store

import (
	"context"

	"campusmate/api/internal/kv"
)

// RegistrationsRepo tracks which usernames registered for which event.
// The mapping is append-only and membership is idempotent.
type RegistrationsRepo struct {
	kv *kv.Store
}

func NewRegistrations(store *kv.Store) *RegistrationsRepo {
	return &RegistrationsRepo{kv: store}
}

func (r *RegistrationsRepo) all(ctx context.Context) Registrations {
	regs := Registrations{}
	r.kv.ReadJSON(ctx, kv.KeyRegistrations, &regs)
	return regs
}

func (r *RegistrationsRepo) ListForEvent(ctx context.Context, eventID string) []string {
	usernames := r.all(ctx)[eventID]
	if usernames == nil {
		return []string{}
	}
	return usernames
}

func (r *RegistrationsRepo) IsRegistered(ctx context.Context, eventID, username string) bool {
	for _, u := range r.all(ctx)[eventID] {
		if u == username {
			return true
		}
	}
	return false
}

// Register adds username to the event's set. Registering twice is a no-op.
func (r *RegistrationsRepo) Register(ctx context.Context, eventID, username string) error {
	regs := r.all(ctx)
	for _, u := range regs[eventID] {
		if u == username {
			return nil
		}
	}
	regs[eventID] = append(regs[eventID], username)
	return r.kv.WriteJSON(ctx, kv.KeyRegistrations, regs)
}
