package store

import (
	"context"

	"campusmate/api/internal/kv"
)

type Complaints struct {
	kv *kv.Store
}

func NewComplaints(store *kv.Store) *Complaints {
	return &Complaints{kv: store}
}

func (r *Complaints) List(ctx context.Context) []Complaint {
	complaints := []Complaint{}
	r.kv.ReadJSON(ctx, kv.KeyComplaints, &complaints)
	for i := range complaints {
		complaints[i] = NormalizeComplaint(complaints[i], "")
	}
	return complaints
}

func (r *Complaints) GetByID(ctx context.Context, id string) (Complaint, bool) {
	for _, c := range r.List(ctx) {
		if c.ID == id {
			return c, true
		}
	}
	return Complaint{}, false
}

func (r *Complaints) Add(ctx context.Context, complaint Complaint) (Complaint, error) {
	complaint = NormalizeComplaint(complaint, complaint.Owner)
	complaints := r.List(ctx)
	complaints = append(complaints, complaint)
	return complaint, r.kv.WriteJSON(ctx, kv.KeyComplaints, complaints)
}

func (r *Complaints) UpdateByID(ctx context.Context, id string, updated Complaint) (bool, error) {
	complaints := r.List(ctx)
	for i := range complaints {
		if complaints[i].ID == id {
			updated.ID = id
			complaints[i] = NormalizeComplaint(updated, complaints[i].Owner)
			return true, r.kv.WriteJSON(ctx, kv.KeyComplaints, complaints)
		}
	}
	return false, nil
}

func (r *Complaints) DeleteByID(ctx context.Context, id string) (bool, error) {
	complaints := r.List(ctx)
	for i := range complaints {
		if complaints[i].ID == id {
			complaints = append(complaints[:i], complaints[i+1:]...)
			return true, r.kv.WriteJSON(ctx, kv.KeyComplaints, complaints)
		}
	}
	return false, nil
}
