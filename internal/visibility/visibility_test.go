package visibility

import (
	"strings"
	"testing"

	"campusmate/api/internal/store"
)

var (
	alice  = store.User{Username: "alice", Role: "user"}
	bob    = store.User{Username: "bob", Role: "user"}
	admin1 = store.User{Username: "admin1", Role: "admin"}

	testAdmins = map[string]bool{"admin1": true}
)

func taskFixture() []store.Task {
	return []store.Task{
		{ID: "t1", Text: "Buy books", Status: "Pending", Visibility: "public", Owner: "alice", CreatedAt: 100},
		{ID: "t2", Text: "alice secret", Status: "Pending", Visibility: "admin", Owner: "alice", CreatedAt: 200},
		{ID: "t3", Text: "Campus notice", Status: "Completed", Visibility: "public", Owner: "admin1", CreatedAt: 300},
		{ID: "t4", Text: "Policy update", Status: "Pending", Visibility: "admin", Owner: "admin1", CreatedAt: 400},
		{ID: "t5", Text: "bob homework", Status: "In Progress", Visibility: "public", Owner: "bob", CreatedAt: 500},
	}
}

func ids(tasks []store.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func hasID(tasks []store.Task, id string) bool {
	for _, t := range tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

func TestRoleGateNonAdmin(t *testing.T) {
	visible := VisibleTasks(taskFixture(), alice, testAdmins, TaskQuery{Filter: FilterAll})

	// Own tasks regardless of visibility, plus admin-owned public tasks.
	for _, want := range []string{"t1", "t2", "t3"} {
		if !hasID(visible, want) {
			t.Errorf("expected %s visible to alice, got %v", want, ids(visible))
		}
	}
	// Admin-only admin task and another user's public task are hidden:
	// public visibility only crosses users when the owner is an admin.
	for _, hidden := range []string{"t4", "t5"} {
		if hasID(visible, hidden) {
			t.Errorf("expected %s hidden from alice, got %v", hidden, ids(visible))
		}
	}
}

func TestRoleGateAdminSeesAll(t *testing.T) {
	visible := VisibleTasks(taskFixture(), admin1, testAdmins, TaskQuery{Filter: FilterAll})
	if len(visible) != 5 {
		t.Errorf("expected admin to see all 5 tasks, got %v", ids(visible))
	}
}

func TestVisibilityIffOwnershipOrAdminPublic(t *testing.T) {
	// T visible to non-admin U iff T.owner == U.username or
	// (T.visibility == public and owner(T) is admin).
	all := taskFixture()
	visible := VisibleTasks(all, bob, testAdmins, TaskQuery{Filter: FilterAll})
	for _, task := range all {
		want := task.Owner == bob.Username ||
			(task.Visibility == "public" && testAdmins[task.Owner])
		if got := hasID(visible, task.ID); got != want {
			t.Errorf("task %s: visible=%v, want %v", task.ID, got, want)
		}
	}
}

func TestFilterMy(t *testing.T) {
	visible := VisibleTasks(taskFixture(), alice, testAdmins, TaskQuery{Filter: FilterMy})
	if len(visible) != 2 || !hasID(visible, "t1") || !hasID(visible, "t2") {
		t.Errorf("expected alice's own tasks only, got %v", ids(visible))
	}
}

func TestFilterPublic(t *testing.T) {
	visible := VisibleTasks(taskFixture(), alice, testAdmins, TaskQuery{Filter: FilterPublic})
	for _, task := range visible {
		if task.Visibility != "public" {
			t.Errorf("non-public task %s passed the public filter", task.ID)
		}
	}
}

func TestFilterAdminIgnoredForNonAdmins(t *testing.T) {
	// The admin filter is only effective for admin viewers; for alice it is
	// a no-op on top of the role gate.
	visible := VisibleTasks(taskFixture(), alice, testAdmins, TaskQuery{Filter: FilterAdmin})
	if !hasID(visible, "t1") || !hasID(visible, "t3") {
		t.Errorf("admin filter should not narrow a non-admin's view, got %v", ids(visible))
	}

	adminView := VisibleTasks(taskFixture(), admin1, testAdmins, TaskQuery{Filter: FilterAdmin})
	if len(adminView) != 2 || !hasID(adminView, "t2") || !hasID(adminView, "t4") {
		t.Errorf("expected only admin-visibility tasks for admin1, got %v", ids(adminView))
	}
}

func TestAdminTaskScenario(t *testing.T) {
	// admin1 creates {text:"Policy update", visibility:"admin"}; alice with
	// filter=all must not see it, admin1 with filter=admin must.
	aliceView := VisibleTasks(taskFixture(), alice, testAdmins, TaskQuery{Filter: FilterAll})
	if hasID(aliceView, "t4") {
		t.Error("alice must not see the admin-visibility policy task")
	}
	adminView := VisibleTasks(taskFixture(), admin1, testAdmins, TaskQuery{Filter: FilterAdmin})
	if !hasID(adminView, "t4") {
		t.Error("admin1 with filter=admin must see the policy task")
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	visible := VisibleTasks(taskFixture(), admin1, testAdmins, TaskQuery{Search: "CAMPUS"})
	if len(visible) != 1 || visible[0].ID != "t3" {
		t.Errorf("expected substring match on t3, got %v", ids(visible))
	}

	// Empty search is a no-op.
	visible = VisibleTasks(taskFixture(), admin1, testAdmins, TaskQuery{Search: "   "})
	if len(visible) != 5 {
		t.Errorf("blank search should not filter, got %v", ids(visible))
	}
}

func TestSortOrders(t *testing.T) {
	az := VisibleTasks(taskFixture(), admin1, testAdmins, TaskQuery{Sort: SortAZ})
	for i := 1; i < len(az); i++ {
		if strings.ToLower(az[i-1].Text) > strings.ToLower(az[i].Text) {
			t.Errorf("az order violated at %d: %q > %q", i, az[i-1].Text, az[i].Text)
		}
	}

	za := VisibleTasks(taskFixture(), admin1, testAdmins, TaskQuery{Sort: SortZA})
	for i := range az {
		if az[i].ID != za[len(za)-1-i].ID {
			t.Errorf("za should be the reverse of az (no text ties in fixture)")
			break
		}
	}

	newest := VisibleTasks(taskFixture(), admin1, testAdmins, TaskQuery{})
	for i := 1; i < len(newest); i++ {
		if newest[i-1].CreatedAt < newest[i].CreatedAt {
			t.Errorf("newest order violated at %d", i)
		}
	}

	oldest := VisibleTasks(taskFixture(), admin1, testAdmins, TaskQuery{Sort: SortOldest})
	for i := 1; i < len(oldest); i++ {
		if oldest[i-1].CreatedAt > oldest[i].CreatedAt {
			t.Errorf("oldest order violated at %d", i)
		}
	}
}

func TestEditabilityImpliesVisibility(t *testing.T) {
	all := taskFixture()
	for _, viewer := range []store.User{alice, bob} {
		visible := VisibleTasks(all, viewer, testAdmins, TaskQuery{Filter: FilterAll})
		for _, task := range all {
			if CanEditTask(task, viewer) && !hasID(visible, task.ID) {
				t.Errorf("%s can edit %s but cannot see it", viewer.Username, task.ID)
			}
		}
	}
}

func TestVisibleButNotEditable(t *testing.T) {
	adminPublic := store.Task{ID: "t3", Visibility: "public", Owner: "admin1"}
	visible := VisibleTasks(taskFixture(), alice, testAdmins, TaskQuery{Filter: FilterAll})
	if !hasID(visible, "t3") {
		t.Fatal("alice should see admin1's public task")
	}
	if CanEditTask(adminPublic, alice) {
		t.Error("alice must not be able to edit admin1's public task")
	}
	if !CanEditTask(adminPublic, admin1) {
		t.Error("admin1 must be able to edit their own task")
	}
}

func TestVisibleEvents(t *testing.T) {
	events := []store.Event{
		{ID: "e1", Title: "Hackathon", Visibility: "public", CreatedBy: "admin1"},
		{ID: "e2", Title: "Staff briefing", Visibility: "admin", CreatedBy: "admin1"},
	}
	if got := VisibleEvents(events, alice); len(got) != 1 || got[0].ID != "e1" {
		t.Errorf("alice should see only the public event, got %d", len(got))
	}
	if got := VisibleEvents(events, admin1); len(got) != 2 {
		t.Errorf("admin should see both events, got %d", len(got))
	}
}

func TestVisibleComplaintsAndFeedback(t *testing.T) {
	complaints := []store.Complaint{
		{ID: "c1", Owner: "alice"},
		{ID: "c2", Owner: "bob"},
	}
	if got := VisibleComplaints(complaints, alice); len(got) != 1 || got[0].ID != "c1" {
		t.Errorf("alice should see her own complaint only, got %d", len(got))
	}
	if got := VisibleComplaints(complaints, admin1); len(got) != 2 {
		t.Errorf("admin should see all complaints, got %d", len(got))
	}

	entries := []store.Feedback{
		{ID: "f1", Owner: "alice"},
		{ID: "f2", Owner: "bob"},
	}
	if got := VisibleFeedback(entries, bob); len(got) != 1 || got[0].ID != "f2" {
		t.Errorf("bob should see his own feedback only, got %d", len(got))
	}
}

func TestAdminOwners(t *testing.T) {
	users := []store.User{
		{Username: "Admin1", Role: "admin"},
		{Username: "alice", Role: "user"},
		{Username: "carol", Role: "bogus"},
	}
	admins := AdminOwners(users)
	if !admins["admin1"] {
		t.Error("admin username should be indexed lowercase")
	}
	if admins["alice"] || admins["carol"] {
		t.Error("non-admins (including clamped roles) must not be marked admin")
	}
}
