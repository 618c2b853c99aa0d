package store

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeTaskDefaults(t *testing.T) {
	got := NormalizeTask(Task{Text: "  do thing  "}, "alice")

	if got.ID == "" || !strings.HasPrefix(got.ID, "task_") {
		t.Errorf("expected generated task id, got %q", got.ID)
	}
	if got.Text != "do thing" {
		t.Errorf("expected trimmed text, got %q", got.Text)
	}
	if got.Status != TaskPending {
		t.Errorf("expected default status Pending, got %q", got.Status)
	}
	if got.Visibility != VisibilityPublic {
		t.Errorf("expected default visibility public, got %q", got.Visibility)
	}
	if got.Owner != "alice" {
		t.Errorf("expected fallback owner, got %q", got.Owner)
	}
	if got.CreatedAt <= 0 {
		t.Error("expected createdAt to default to now")
	}
}

func TestNormalizeTaskClampsInvalidEnums(t *testing.T) {
	got := NormalizeTask(Task{ID: "task_x", Text: "x", Status: "Bogus", Visibility: "secret", Owner: "bob", CreatedAt: 5}, "alice")
	if got.Status != TaskPending {
		t.Errorf("invalid status must clamp to Pending, got %q", got.Status)
	}
	if got.Visibility != VisibilityPublic {
		t.Errorf("invalid visibility must clamp to public, got %q", got.Visibility)
	}
	// Valid fields pass through untouched.
	if got.ID != "task_x" || got.Owner != "bob" || got.CreatedAt != 5 {
		t.Errorf("valid fields changed: %+v", got)
	}
}

func TestNormalizeTaskKeepsValidEnums(t *testing.T) {
	for _, status := range []string{TaskPending, TaskInProgress, TaskCompleted} {
		if got := NormalizeTaskStatus(status); got != status {
			t.Errorf("valid status %q clamped to %q", status, got)
		}
	}
	if NormalizeVisibility(VisibilityAdmin) != VisibilityAdmin {
		t.Error("admin visibility should pass through")
	}
}

func TestNormalizeComplaint(t *testing.T) {
	got := NormalizeComplaint(Complaint{Category: "Gossip", Status: "Escalated"}, "alice")
	if got.Category != CategoryOther {
		t.Errorf("invalid category must clamp to Other, got %q", got.Category)
	}
	if got.Status != ComplaintPending {
		t.Errorf("invalid status must clamp to Pending, got %q", got.Status)
	}
	if got.Owner != "alice" || got.ID == "" {
		t.Errorf("missing owner/id not defaulted: %+v", got)
	}
}

func TestNormalizeFeedbackRating(t *testing.T) {
	six, three := 6, 3

	got := NormalizeFeedback(Feedback{Message: "great", Rating: &six}, "alice")
	if got.Rating != nil {
		t.Errorf("out-of-range rating must become nil, got %v", *got.Rating)
	}

	got = NormalizeFeedback(Feedback{Message: "ok", Rating: &three}, "alice")
	if got.Rating == nil || *got.Rating != 3 {
		t.Error("valid rating must survive")
	}

	got = NormalizeFeedback(Feedback{Message: "unrated"}, "alice")
	if got.Rating != nil {
		t.Error("absent rating must stay nil")
	}
}

func TestDeriveEventStatus(t *testing.T) {
	now := time.Now().UnixMilli()
	tests := []struct {
		name             string
		start, end, when int64
		want             string
	}{
		{"before window", now + 1000, now + 2000, now, EventUpcoming},
		{"inside window", now - 1000, now + 1000, now, EventStarted},
		{"after window", now - 2000, now - 1000, now, EventEnded},
		{"no dates", 0, 0, now, EventUpcoming},
	}
	for _, tt := range tests {
		if got := DeriveEventStatus(tt.start, tt.end, tt.when); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNormalizeEventStatus(t *testing.T) {
	// An explicit valid status survives even outside its window.
	got := NormalizeEvent(Event{Title: "x", Status: EventEnded, StartDate: time.Now().UnixMilli() + 10000}, "admin1")
	if got.Status != EventEnded {
		t.Errorf("explicit status must pass through, got %q", got.Status)
	}

	// An invalid status derives from the window.
	got = NormalizeEvent(Event{Title: "x", Status: "Cancelled", StartDate: time.Now().UnixMilli() + 10000, EndDate: time.Now().UnixMilli() + 20000}, "admin1")
	if got.Status != EventUpcoming {
		t.Errorf("invalid status must derive from window, got %q", got.Status)
	}
	if got.Visibility != VisibilityPublic {
		t.Errorf("event visibility must default to public, got %q", got.Visibility)
	}
}

func TestNewIDFormat(t *testing.T) {
	id := NewID("task")
	parts := strings.SplitN(id, "_", 3)
	if len(parts) != 3 || parts[0] != "task" {
		t.Fatalf("unexpected id shape %q", id)
	}
	if parts[1] == "" || parts[2] == "" {
		t.Errorf("id must carry timestamp and random suffix: %q", id)
	}

	if NewID("task") == NewID("task") {
		t.Error("consecutive ids should differ")
	}
}
