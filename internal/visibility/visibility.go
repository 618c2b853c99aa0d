// Package visibility holds the pure read/edit gating rules. Visibility and
// editability are separate invariants: a non-admin can see an admin's public
// task without being allowed to touch it.
package visibility

import (
	"sort"
	"strings"

	"campusmate/api/internal/rbac"
	"campusmate/api/internal/store"
)

// Task list filter selections.
const (
	FilterAll    = "all"
	FilterMy     = "my"
	FilterPublic = "public"
	FilterAdmin  = "admin"
)

// Sort orders. Newest is the default.
const (
	SortAZ     = "az"
	SortZA     = "za"
	SortOldest = "oldest"
	SortNewest = "newest"
)

// TaskQuery is the caller's view selection.
type TaskQuery struct {
	Filter string
	Search string
	Sort   string
}

// AdminOwners builds the lowercase set of admin usernames from the user
// table, for the public-task role gate.
func AdminOwners(users []store.User) map[string]bool {
	admins := make(map[string]bool)
	for _, u := range users {
		if rbac.Normalize(u.Role) == rbac.RoleAdmin {
			admins[strings.ToLower(u.Username)] = true
		}
	}
	return admins
}

// VisibleTasks applies, in order: the role gate, the filter selection, the
// text search, and the sort. Admins see everything; everyone else sees their
// own tasks plus public tasks owned by admin accounts.
func VisibleTasks(all []store.Task, viewer store.User, adminOwners map[string]bool, q TaskQuery) []store.Task {
	isAdmin := rbac.Normalize(viewer.Role) == rbac.RoleAdmin

	visible := make([]store.Task, 0, len(all))
	for _, t := range all {
		if isAdmin || ownedBy(t, viewer) ||
			(t.Visibility == store.VisibilityPublic && adminOwners[strings.ToLower(t.Owner)]) {
			visible = append(visible, t)
		}
	}

	switch q.Filter {
	case FilterMy:
		visible = keep(visible, func(t store.Task) bool { return ownedBy(t, viewer) })
	case FilterPublic:
		visible = keep(visible, func(t store.Task) bool { return t.Visibility == store.VisibilityPublic })
	case FilterAdmin:
		if isAdmin {
			visible = keep(visible, func(t store.Task) bool { return t.Visibility == store.VisibilityAdmin })
		}
	}

	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		visible = keep(visible, func(t store.Task) bool {
			return strings.Contains(strings.ToLower(t.Text), search)
		})
	}

	sortTasks(visible, q.Sort)
	return visible
}

// CanEditTask reports whether viewer may modify the task: its owner, or any
// admin. Visibility never implies editability.
func CanEditTask(t store.Task, viewer store.User) bool {
	if rbac.Normalize(viewer.Role) == rbac.RoleAdmin {
		return true
	}
	return ownedBy(t, viewer)
}

// VisibleEvents hides admin-tagged events from non-admins.
func VisibleEvents(events []store.Event, viewer store.User) []store.Event {
	if rbac.Normalize(viewer.Role) == rbac.RoleAdmin {
		return events
	}
	return keep(events, func(e store.Event) bool { return e.Visibility != store.VisibilityAdmin })
}

// CanEditEvent allows the creator or any admin.
func CanEditEvent(e store.Event, viewer store.User) bool {
	if rbac.Normalize(viewer.Role) == rbac.RoleAdmin {
		return true
	}
	return strings.EqualFold(e.CreatedBy, viewer.Username)
}

// VisibleComplaints is owner-only unless the viewer is an admin.
func VisibleComplaints(complaints []store.Complaint, viewer store.User) []store.Complaint {
	if rbac.Normalize(viewer.Role) == rbac.RoleAdmin {
		return complaints
	}
	return keep(complaints, func(c store.Complaint) bool {
		return strings.EqualFold(c.Owner, viewer.Username)
	})
}

// VisibleFeedback is owner-only unless the viewer is an admin.
func VisibleFeedback(entries []store.Feedback, viewer store.User) []store.Feedback {
	if rbac.Normalize(viewer.Role) == rbac.RoleAdmin {
		return entries
	}
	return keep(entries, func(f store.Feedback) bool {
		return strings.EqualFold(f.Owner, viewer.Username)
	})
}

// Permission slips are visible to every authenticated user; there is no
// per-role gate, so no filter function exists for them.

func ownedBy(t store.Task, viewer store.User) bool {
	return strings.EqualFold(t.Owner, viewer.Username)
}

func sortTasks(tasks []store.Task, order string) {
	switch order {
	case SortAZ:
		sort.SliceStable(tasks, func(i, j int) bool {
			return strings.ToLower(tasks[i].Text) < strings.ToLower(tasks[j].Text)
		})
	case SortZA:
		sort.SliceStable(tasks, func(i, j int) bool {
			return strings.ToLower(tasks[i].Text) > strings.ToLower(tasks[j].Text)
		})
	case SortOldest:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt < tasks[j].CreatedAt
		})
	default: // newest
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt > tasks[j].CreatedAt
		})
	}
}

func keep[T any](items []T, pred func(T) bool) []T {
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			kept = append(kept, item)
		}
	}
	return kept
}
