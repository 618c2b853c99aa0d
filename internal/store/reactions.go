package store

import (
	"context"

	"campusmate/api/internal/kv"
)

// ReactionsRepo tracks per-user like/dislike reactions on complaints.
// Last write wins per user; clearing removes the entry.
type ReactionsRepo struct {
	kv *kv.Store
}

func NewReactions(store *kv.Store) *ReactionsRepo {
	return &ReactionsRepo{kv: store}
}

func (r *ReactionsRepo) all(ctx context.Context) Reactions {
	reactions := Reactions{}
	r.kv.ReadJSON(ctx, kv.KeyReactions, &reactions)
	return reactions
}

// Set records username's reaction to a complaint. An empty reaction clears
// the user's entry; anything other than like/dislike also clears it.
func (r *ReactionsRepo) Set(ctx context.Context, complaintID, username, reaction string) error {
	reactions := r.all(ctx)
	if reaction != ReactionLike && reaction != ReactionDislike {
		if perUser, ok := reactions[complaintID]; ok {
			delete(perUser, username)
			if len(perUser) == 0 {
				delete(reactions, complaintID)
			}
		}
		return r.kv.WriteJSON(ctx, kv.KeyReactions, reactions)
	}
	if reactions[complaintID] == nil {
		reactions[complaintID] = map[string]string{}
	}
	reactions[complaintID][username] = reaction
	return r.kv.WriteJSON(ctx, kv.KeyReactions, reactions)
}

func (r *ReactionsRepo) Get(ctx context.Context, complaintID, username string) string {
	return r.all(ctx)[complaintID][username]
}

// Counts returns the number of likes and dislikes on a complaint.
func (r *ReactionsRepo) Counts(ctx context.Context, complaintID string) (likes, dislikes int) {
	for _, reaction := range r.all(ctx)[complaintID] {
		switch reaction {
		case ReactionLike:
			likes++
		case ReactionDislike:
			dislikes++
		}
	}
	return likes, dislikes
}
