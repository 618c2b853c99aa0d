package store

import (
	"context"
	"errors"
	"testing"
)

func TestAddAndGetByUsername(t *testing.T) {
	users, _ := setupRepos(t)
	ctx := context.Background()

	err := users.Add(ctx, User{Username: "Alice", Password: "hash", Role: "user", USN: "1BM24CS001"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, ok := users.GetByUsername(ctx, "alice")
	if !ok {
		t.Fatal("lookup must be case-insensitive")
	}
	if got.Username != "Alice" {
		t.Errorf("stored casing must survive, got %q", got.Username)
	}

	if _, ok := users.GetByUsername(ctx, "nobody"); ok {
		t.Error("unknown username must report false")
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	users, _ := setupRepos(t)
	ctx := context.Background()

	if err := users.Add(ctx, User{Username: "alice", USN: "1BM24CS001"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := users.Add(ctx, User{Username: "ALICE", USN: "1BM24CS002"}); !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
	if err := users.Add(ctx, User{Username: "bob", USN: "1bm24cs001"}); !errors.Is(err, ErrDuplicateUSN) {
		t.Errorf("expected ErrDuplicateUSN, got %v", err)
	}

	// A second account with no USN is fine.
	if err := users.Add(ctx, User{Username: "bob"}); err != nil {
		t.Errorf("usn-less account rejected: %v", err)
	}
}

func TestListNormalizesRoles(t *testing.T) {
	users, _ := setupRepos(t)
	ctx := context.Background()

	users.Add(ctx, User{Username: "alice", Role: "superuser"})
	users.Add(ctx, User{Username: "carol", Role: "coordinator"})

	got := users.List(ctx)
	if len(got) != 2 {
		t.Fatalf("expected 2 users, got %d", len(got))
	}
	if got[0].Role != "user" {
		t.Errorf("unknown role must clamp to user, got %q", got[0].Role)
	}
	if got[1].Role != "coordinator" {
		t.Errorf("valid role must survive, got %q", got[1].Role)
	}
}

func TestMergeNewSkipsExisting(t *testing.T) {
	users, _ := setupRepos(t)
	ctx := context.Background()

	users.Add(ctx, User{Username: "alice", Name: "Original Alice"})

	err := users.MergeNew(ctx, []User{
		{Username: "ALICE", Name: "Imported Alice"},
		{Username: "bob", Name: "Imported Bob"},
	})
	if err != nil {
		t.Fatalf("MergeNew failed: %v", err)
	}

	got := users.List(ctx)
	if len(got) != 2 {
		t.Fatalf("expected 2 users after merge, got %d", len(got))
	}
	alice, _ := users.GetByUsername(ctx, "alice")
	if alice.Name != "Original Alice" {
		t.Errorf("merge must not touch existing accounts, got %q", alice.Name)
	}
	if _, ok := users.GetByUsername(ctx, "bob"); !ok {
		t.Error("new account missing after merge")
	}
}

func TestReplaceAll(t *testing.T) {
	users, _ := setupRepos(t)
	ctx := context.Background()

	users.Add(ctx, User{Username: "old"})

	if err := users.ReplaceAll(ctx, []User{{Username: "fresh", Role: "wizard"}}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	got := users.List(ctx)
	if len(got) != 1 || got[0].Username != "fresh" {
		t.Errorf("unexpected user table after replace: %+v", got)
	}
	if got[0].Role != "user" {
		t.Errorf("replace must normalize roles, got %q", got[0].Role)
	}
}
