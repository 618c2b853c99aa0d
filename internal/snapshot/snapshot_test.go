package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"campusmate/api/internal/kv"
	"campusmate/api/internal/session"
	"campusmate/api/internal/store"
)

type fixture struct {
	svc      *Service
	users    *store.Users
	tasks    *store.Tasks
	sessions *session.Manager
}

func setup(t *testing.T) fixture {
	s := miniredis.RunT(t)
	kvStore, err := kv.Open("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to open kv store: %v", err)
	}
	users := store.NewUsers(kvStore)
	tasks := store.NewTasks(kvStore)
	sessions := session.NewManager(kvStore)
	return fixture{
		svc:      NewService(users, tasks, sessions, "1.0"),
		users:    users,
		tasks:    tasks,
		sessions: sessions,
	}
}

func seed(t *testing.T, f fixture) {
	ctx := context.Background()
	for _, u := range []store.User{
		{Username: "alice", Password: "pw", Role: "user", Name: "Alice"},
		{Username: "admin1", Password: "pw", Role: "admin", Name: "Admin"},
	} {
		if err := f.users.Add(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	for _, task := range []store.Task{
		{ID: "task_1", Text: "one", Owner: "alice", Status: "Pending", Visibility: "public", CreatedAt: 1},
		{ID: "task_2", Text: "two", Owner: "admin1", Status: "Completed", Visibility: "admin", CreatedAt: 2},
	} {
		if _, err := f.tasks.Append(ctx, task); err != nil {
			t.Fatalf("seed task: %v", err)
		}
	}
}

func taskIDSet(tasks []store.Task) map[string]bool {
	ids := make(map[string]bool)
	for _, t := range tasks {
		ids[t.ID] = true
	}
	return ids
}

func TestExportShape(t *testing.T) {
	f := setup(t)
	seed(t, f)

	doc := f.svc.Export(context.Background())
	if len(doc.Users) != 2 || len(doc.Tasks) != 2 {
		t.Fatalf("expected 2 users and 2 tasks, got %d/%d", len(doc.Users), len(doc.Tasks))
	}
	if doc.AppVersion != "1.0" {
		t.Errorf("unexpected appVersion %q", doc.AppVersion)
	}
	if doc.ExportedAt == 0 {
		t.Error("exportedAt must be set")
	}
}

func TestReplaceRoundTrip(t *testing.T) {
	f := setup(t)
	seed(t, f)
	ctx := context.Background()

	doc := f.svc.Export(ctx)
	payload, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if err := f.svc.Import(ctx, payload, ModeReplace); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	after := f.svc.Export(ctx)
	if len(after.Users) != len(doc.Users) {
		t.Errorf("user count changed: %d -> %d", len(doc.Users), len(after.Users))
	}
	before := taskIDSet(doc.Tasks)
	got := taskIDSet(after.Tasks)
	if len(before) != len(got) {
		t.Fatalf("task universe size changed: %d -> %d", len(before), len(got))
	}
	for id := range before {
		if !got[id] {
			t.Errorf("task %s lost in round trip", id)
		}
	}
}

func TestImportClearsSession(t *testing.T) {
	f := setup(t)
	seed(t, f)
	ctx := context.Background()

	if err := f.sessions.Set(ctx, store.User{Username: "alice"}); err != nil {
		t.Fatalf("set session: %v", err)
	}

	payload, _ := json.Marshal(f.svc.Export(ctx))
	if err := f.svc.Import(ctx, payload, ModeMerge); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if user := f.sessions.Get(ctx); user != nil {
		t.Errorf("expected session cleared after import, got %+v", user)
	}
}

func TestMergeSkipsExistingUsernames(t *testing.T) {
	f := setup(t)
	seed(t, f)
	ctx := context.Background()

	payload, _ := json.Marshal(Document{
		Users: []store.User{
			{Username: "ALICE", Password: "other", Role: "admin", Name: "Impostor"},
			{Username: "carol", Password: "pw", Role: "user", Name: "Carol"},
		},
		Tasks:      []store.Task{},
		AppVersion: "1.0",
		ExportedAt: 42,
	})
	if err := f.svc.Import(ctx, payload, ModeMerge); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	users := f.users.List(ctx)
	if len(users) != 3 {
		t.Fatalf("expected 3 users after merge, got %d", len(users))
	}
	original, ok := f.users.GetByUsername(ctx, "alice")
	if !ok || original.Name != "Alice" || original.Role != "user" {
		t.Errorf("existing alice must be untouched by merge, got %+v", original)
	}
}

func TestMergeRekeysCollidingTaskIDs(t *testing.T) {
	f := setup(t)
	seed(t, f)
	ctx := context.Background()

	before := f.tasks.ListAll(ctx)

	payload, _ := json.Marshal(Document{
		Users: []store.User{},
		Tasks: []store.Task{
			{ID: "task_1", Text: "colliding", Owner: "alice", CreatedAt: 10},
			{ID: "task_new", Text: "fresh", Owner: "admin1", CreatedAt: 11},
		},
		AppVersion: "1.0",
		ExportedAt: 42,
	})
	if err := f.svc.Import(ctx, payload, ModeMerge); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	after := f.tasks.ListAll(ctx)
	ids := taskIDSet(after)
	// ID set grows by exactly the number of incoming tasks.
	if len(ids) != len(taskIDSet(before))+2 {
		t.Fatalf("expected %d distinct IDs, got %d", len(before)+2, len(ids))
	}
	if len(after) != len(before)+2 {
		t.Fatalf("expected %d tasks, got %d", len(before)+2, len(after))
	}
	if !ids["task_1"] || !ids["task_new"] {
		t.Error("existing IDs and non-colliding incoming IDs must survive")
	}
}

func TestImportRejectsMissingKeys(t *testing.T) {
	f := setup(t)
	seed(t, f)
	ctx := context.Background()

	doc := f.svc.Export(ctx)
	raw, _ := json.Marshal(doc)

	// Corrupt the payload by dropping appVersion.
	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asMap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	delete(asMap, "appVersion")
	broken, _ := json.Marshal(asMap)

	if err := f.svc.Import(ctx, broken, ModeReplace); !errors.Is(err, ErrBadFormat) {
		t.Fatalf("expected ErrBadFormat, got %v", err)
	}

	// No data mutated.
	after := f.svc.Export(ctx)
	if len(after.Users) != len(doc.Users) || len(after.Tasks) != len(doc.Tasks) {
		t.Error("failed import must not mutate data")
	}
}

func TestImportRejectsNonArrayTasks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	payload := []byte(`{"users": [], "tasks": "nope", "appVersion": "1.0", "exportedAt": 1}`)
	if err := f.svc.Import(ctx, payload, ModeReplace); !errors.Is(err, ErrBadFormat) {
		t.Errorf("expected ErrBadFormat, got %v", err)
	}
}

func TestImportRejectsUnknownMode(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	payload := []byte(`{"users": [], "tasks": [], "appVersion": "1.0", "exportedAt": 1}`)
	if err := f.svc.Import(ctx, payload, "append"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

func TestReplaceRepartitionsByOwner(t *testing.T) {
	f := setup(t)
	seed(t, f)
	ctx := context.Background()

	payload, _ := json.Marshal(Document{
		Users: []store.User{
			{Username: "dave", Password: "pw", Role: "user", Name: "Dave"},
		},
		Tasks: []store.Task{
			{ID: "task_d", Text: "dave's", Owner: "dave", CreatedAt: 5},
		},
		AppVersion: "1.0",
		ExportedAt: 42,
	})
	if err := f.svc.Import(ctx, payload, ModeReplace); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	all := f.tasks.ListAll(ctx)
	if len(all) != 1 || all[0].ID != "task_d" {
		t.Fatalf("expected only dave's task after replace, got %+v", all)
	}
	if got := f.tasks.ListByOwner(ctx, "alice"); len(got) != 0 {
		t.Errorf("alice's partition should be cleared, got %d tasks", len(got))
	}
}
