// Package snapshot implements full-fidelity export and restore of the user
// and task universe. Events, complaints, feedback, permissions, and
// reactions are deliberately not part of the document; the portable format
// covers accounts and tasks only.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"campusmate/api/internal/session"
	"campusmate/api/internal/store"
)

const (
	ModeReplace = "replace"
	ModeMerge   = "merge"
)

var (
	ErrBadFormat   = errors.New("invalid backup format: users, tasks, appVersion, and exportedAt are required")
	ErrUnknownMode = errors.New("import mode must be replace or merge")
)

// Document is the portable snapshot format.
type Document struct {
	Users      []store.User `json:"users"`
	Tasks      []store.Task `json:"tasks"`
	AppVersion string       `json:"appVersion"`
	ExportedAt int64        `json:"exportedAt"`
}

type Service struct {
	users      *store.Users
	tasks      *store.Tasks
	sessions   *session.Manager
	appVersion string
}

func NewService(users *store.Users, tasks *store.Tasks, sessions *session.Manager, appVersion string) *Service {
	return &Service{users: users, tasks: tasks, sessions: sessions, appVersion: appVersion}
}

// Export snapshots every account and the whole task universe.
func (s *Service) Export(ctx context.Context) Document {
	return Document{
		Users:      s.users.List(ctx),
		Tasks:      s.tasks.ListAll(ctx),
		AppVersion: s.appVersion,
		ExportedAt: time.Now().UnixMilli(),
	}
}

// Import restores a snapshot. The payload must carry all four top-level
// keys with users and tasks as arrays; anything else fails before any write.
// Both modes finish with a normalization sweep and a session clear, so
// restored data never carries over a stale authenticated identity.
func (s *Service) Import(ctx context.Context, payload []byte, mode string) error {
	doc, err := parseDocument(payload)
	if err != nil {
		return err
	}

	switch mode {
	case ModeReplace:
		if err := s.importReplace(ctx, doc); err != nil {
			return err
		}
	case ModeMerge:
		if err := s.importMerge(ctx, doc); err != nil {
			return err
		}
	default:
		return ErrUnknownMode
	}

	if err := s.tasks.Sweep(ctx); err != nil {
		return fmt.Errorf("post-import sweep: %w", err)
	}
	return s.sessions.Clear(ctx)
}

func parseDocument(payload []byte) (Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Document{}, ErrBadFormat
	}
	for _, key := range []string{"users", "tasks", "appVersion", "exportedAt"} {
		if _, ok := raw[key]; !ok {
			return Document{}, ErrBadFormat
		}
	}

	var doc Document
	if err := json.Unmarshal(raw["users"], &doc.Users); err != nil || doc.Users == nil {
		return Document{}, ErrBadFormat
	}
	if err := json.Unmarshal(raw["tasks"], &doc.Tasks); err != nil || doc.Tasks == nil {
		return Document{}, ErrBadFormat
	}
	// appVersion and exportedAt only need to be present.
	_ = json.Unmarshal(raw["appVersion"], &doc.AppVersion)
	_ = json.Unmarshal(raw["exportedAt"], &doc.ExportedAt)
	return doc, nil
}

// importReplace overwrites the user table wholesale and re-partitions the
// incoming tasks. Writes are sequential with no rollback; a failure partway
// can leave a mixed state.
func (s *Service) importReplace(ctx context.Context, doc Document) error {
	// Clear before swapping the user table: partition keys are derived from
	// the users known at clear time, and the outgoing universe is the one
	// that must be emptied.
	if err := s.tasks.ClearAll(ctx); err != nil {
		return err
	}
	if err := s.users.ReplaceAll(ctx, doc.Users); err != nil {
		return err
	}
	return s.tasks.ReplaceAll(ctx, doc.Tasks)
}

// importMerge unions the snapshot with existing data: new usernames are
// appended, and incoming tasks whose IDs collide with any task in the
// existing universe get fresh IDs. Existing tasks keep IDs and positions.
func (s *Service) importMerge(ctx context.Context, doc Document) error {
	if err := s.users.MergeNew(ctx, doc.Users); err != nil {
		return err
	}

	taken := s.tasks.AllIDs(ctx)
	for _, task := range doc.Tasks {
		task = store.NormalizeTask(task, "admin")
		if _, collides := taken[task.ID]; collides {
			task.ID = store.NewID("task")
		}
		taken[task.ID] = struct{}{}
		if _, err := s.tasks.Append(ctx, task); err != nil {
			return err
		}
	}
	return nil
}
