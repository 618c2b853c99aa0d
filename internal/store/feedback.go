package store

import (
	"context"

	"campusmate/api/internal/kv"
)

type FeedbackRepo struct {
	kv *kv.Store
}

func NewFeedback(store *kv.Store) *FeedbackRepo {
	return &FeedbackRepo{kv: store}
}

func (r *FeedbackRepo) List(ctx context.Context) []Feedback {
	entries := []Feedback{}
	r.kv.ReadJSON(ctx, kv.KeyFeedback, &entries)
	for i := range entries {
		entries[i] = NormalizeFeedback(entries[i], "")
	}
	return entries
}

func (r *FeedbackRepo) Add(ctx context.Context, entry Feedback) (Feedback, error) {
	entry = NormalizeFeedback(entry, entry.Owner)
	entries := r.List(ctx)
	entries = append(entries, entry)
	return entry, r.kv.WriteJSON(ctx, kv.KeyFeedback, entries)
}

func (r *FeedbackRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	entries := r.List(ctx)
	for i := range entries {
		if entries[i].ID == id {
			entries = append(entries[:i], entries[i+1:]...)
			return true, r.kv.WriteJSON(ctx, kv.KeyFeedback, entries)
		}
	}
	return false, nil
}
