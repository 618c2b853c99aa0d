package store

import (
	"context"

	"campusmate/api/internal/kv"
)

// fallbackTaskOwner claims tasks from the legacy unpartitioned record when
// they carry no owner of their own.
const fallbackTaskOwner = "admin"

// Tasks is the task repository. Storage is partitioned per owner: one record
// per username, plus a legacy unpartitioned record consumed only by Sweep.
type Tasks struct {
	kv *kv.Store
}

func NewTasks(store *kv.Store) *Tasks {
	return &Tasks{kv: store}
}

// ListByOwner returns one owner's partition, normalized on read.
func (r *Tasks) ListByOwner(ctx context.Context, owner string) []Task {
	tasks := []Task{}
	r.kv.ReadJSON(ctx, kv.TaskKey(owner), &tasks)
	for i := range tasks {
		tasks[i] = NormalizeTask(tasks[i], owner)
	}
	return tasks
}

// ListAll fans out across every known user's partition and concatenates.
func (r *Tasks) ListAll(ctx context.Context) []Task {
	users := []User{}
	r.kv.ReadJSON(ctx, kv.KeyUsers, &users)

	all := []Task{}
	for _, u := range users {
		all = append(all, r.ListByOwner(ctx, u.Username)...)
	}
	return all
}

// AllIDs returns the set of task IDs across the whole task universe.
func (r *Tasks) AllIDs(ctx context.Context) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, t := range r.ListAll(ctx) {
		ids[t.ID] = struct{}{}
	}
	return ids
}

// Append normalizes and stores a task in its owner's partition.
func (r *Tasks) Append(ctx context.Context, task Task) (Task, error) {
	task = NormalizeTask(task, fallbackTaskOwner)
	tasks := r.ListByOwner(ctx, task.Owner)
	tasks = append(tasks, task)
	return task, r.kv.WriteJSON(ctx, kv.TaskKey(task.Owner), tasks)
}

// GetByID scans the whole universe for a task.
func (r *Tasks) GetByID(ctx context.Context, id string) (Task, bool) {
	for _, t := range r.ListAll(ctx) {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// UpdateByID replaces the task with the given ID in its owner's partition,
// preserving position. Returns false when no such task exists.
func (r *Tasks) UpdateByID(ctx context.Context, owner, id string, updated Task) (bool, error) {
	tasks := r.ListByOwner(ctx, owner)
	for i := range tasks {
		if tasks[i].ID == id {
			updated.ID = id
			updated.Owner = owner
			tasks[i] = NormalizeTask(updated, owner)
			return true, r.kv.WriteJSON(ctx, kv.TaskKey(owner), tasks)
		}
	}
	return false, nil
}

// DeleteByID removes the task with the given ID from its owner's partition.
func (r *Tasks) DeleteByID(ctx context.Context, owner, id string) (bool, error) {
	tasks := r.ListByOwner(ctx, owner)
	for i := range tasks {
		if tasks[i].ID == id {
			tasks = append(tasks[:i], tasks[i+1:]...)
			return true, r.kv.WriteJSON(ctx, kv.TaskKey(owner), tasks)
		}
	}
	return false, nil
}

// UpdateAt replaces the task at index in the owner's partition. Out-of-range
// indices are silent no-ops returning the unchanged collection; the caller
// owns the freshness of the index.
func (r *Tasks) UpdateAt(ctx context.Context, owner string, index int, updated Task) ([]Task, error) {
	tasks := r.ListByOwner(ctx, owner)
	if index < 0 || index >= len(tasks) {
		return tasks, nil
	}
	updated.ID = tasks[index].ID
	updated.Owner = owner
	tasks[index] = NormalizeTask(updated, owner)
	return tasks, r.kv.WriteJSON(ctx, kv.TaskKey(owner), tasks)
}

// DeleteAt removes the task at index, with the same out-of-range contract
// as UpdateAt.
func (r *Tasks) DeleteAt(ctx context.Context, owner string, index int) ([]Task, error) {
	tasks := r.ListByOwner(ctx, owner)
	if index < 0 || index >= len(tasks) {
		return tasks, nil
	}
	tasks = append(tasks[:index], tasks[index+1:]...)
	return tasks, r.kv.WriteJSON(ctx, kv.TaskKey(owner), tasks)
}

// ReplaceAll clears every partition and re-partitions the given tasks by
// their (normalized) owner. Used by replace-mode import.
func (r *Tasks) ReplaceAll(ctx context.Context, tasks []Task) error {
	if err := r.ClearAll(ctx); err != nil {
		return err
	}
	byOwner := make(map[string][]Task)
	for _, t := range tasks {
		t = NormalizeTask(t, fallbackTaskOwner)
		byOwner[t.Owner] = append(byOwner[t.Owner], t)
	}
	for owner, partition := range byOwner {
		if err := r.kv.WriteJSON(ctx, kv.TaskKey(owner), partition); err != nil {
			return err
		}
	}
	return nil
}

// ClearAll deletes every known partition and the legacy record.
func (r *Tasks) ClearAll(ctx context.Context) error {
	users := []User{}
	r.kv.ReadJSON(ctx, kv.KeyUsers, &users)
	for _, u := range users {
		if err := r.kv.Delete(ctx, kv.TaskKey(u.Username)); err != nil {
			return err
		}
	}
	return r.kv.Delete(ctx, kv.KeyLegacyTasks)
}

// Sweep re-coerces every stored task record and folds the legacy
// unpartitioned record into the per-owner partitions. Runs after import and
// at startup so manual edits and schema drift never break reads.
func (r *Tasks) Sweep(ctx context.Context) error {
	legacy := []Task{}
	r.kv.ReadJSON(ctx, kv.KeyLegacyTasks, &legacy)

	extra := make(map[string][]Task)
	for _, t := range legacy {
		t = NormalizeTask(t, fallbackTaskOwner)
		extra[t.Owner] = append(extra[t.Owner], t)
	}

	users := []User{}
	r.kv.ReadJSON(ctx, kv.KeyUsers, &users)

	seen := make(map[string]bool)
	for _, u := range users {
		seen[u.Username] = true
		tasks := r.ListByOwner(ctx, u.Username)
		tasks = append(tasks, extra[u.Username]...)
		if err := r.kv.WriteJSON(ctx, kv.TaskKey(u.Username), tasks); err != nil {
			return err
		}
	}

	// Legacy tasks whose owner has no account still get a partition so the
	// data survives; they surface once the owner registers.
	for owner, tasks := range extra {
		if seen[owner] {
			continue
		}
		existing := r.ListByOwner(ctx, owner)
		existing = append(existing, tasks...)
		if err := r.kv.WriteJSON(ctx, kv.TaskKey(owner), existing); err != nil {
			return err
		}
	}

	if len(legacy) > 0 {
		return r.kv.Delete(ctx, kv.KeyLegacyTasks)
	}
	return nil
}
