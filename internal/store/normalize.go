package store

import (
	"strings"
	"time"
)

// Normalizers coerce loosely-shaped records into canonical entities.
// The policy is coerce-never-reject: unknown enum values clamp to a
// documented default, missing IDs are generated fresh, and bad timestamps
// fall back to now. Rehydrated local data must never fail to load.

// NormalizeTask canonicalizes a task. fallbackOwner fills a missing owner,
// typically the username of the partition the task was read from.
func NormalizeTask(t Task, fallbackOwner string) Task {
	if strings.TrimSpace(t.ID) == "" {
		t.ID = NewID("task")
	}
	t.Text = strings.TrimSpace(t.Text)
	t.Status = NormalizeTaskStatus(t.Status)
	t.Visibility = NormalizeVisibility(t.Visibility)
	if strings.TrimSpace(t.Owner) == "" {
		t.Owner = fallbackOwner
	}
	if t.CreatedAt <= 0 {
		t.CreatedAt = time.Now().UnixMilli()
	}
	return t
}

func NormalizeTaskStatus(status string) string {
	switch status {
	case TaskPending, TaskInProgress, TaskCompleted:
		return status
	default:
		return TaskPending
	}
}

func NormalizeVisibility(visibility string) string {
	switch visibility {
	case VisibilityPublic, VisibilityAdmin:
		return visibility
	default:
		return VisibilityPublic
	}
}

func NormalizeComplaint(c Complaint, fallbackOwner string) Complaint {
	if strings.TrimSpace(c.ID) == "" {
		c.ID = NewID("complaint")
	}
	if strings.TrimSpace(c.Owner) == "" {
		c.Owner = fallbackOwner
	}
	switch c.Category {
	case CategoryAcademic, CategoryInfrastructure, CategoryAdministrative, CategoryOther:
	default:
		c.Category = CategoryOther
	}
	switch c.Status {
	case ComplaintPending, ComplaintUnderReview, ComplaintResolved:
	default:
		c.Status = ComplaintPending
	}
	c.Description = strings.TrimSpace(c.Description)
	if c.CreatedAt <= 0 {
		c.CreatedAt = time.Now().UnixMilli()
	}
	return c
}

func NormalizePermission(p Permission, fallbackUploader string) Permission {
	if strings.TrimSpace(p.ID) == "" {
		p.ID = NewID("perm")
	}
	p.Filename = strings.TrimSpace(p.Filename)
	if strings.TrimSpace(p.UploadedBy) == "" {
		p.UploadedBy = fallbackUploader
	}
	if p.CreatedAt <= 0 {
		p.CreatedAt = time.Now().UnixMilli()
	}
	return p
}

func NormalizeFeedback(f Feedback, fallbackOwner string) Feedback {
	if strings.TrimSpace(f.ID) == "" {
		f.ID = NewID("feedback")
	}
	if strings.TrimSpace(f.Owner) == "" {
		f.Owner = fallbackOwner
	}
	f.Message = strings.TrimSpace(f.Message)
	if f.Rating != nil && (*f.Rating < 1 || *f.Rating > 5) {
		f.Rating = nil
	}
	if f.CreatedAt <= 0 {
		f.CreatedAt = time.Now().UnixMilli()
	}
	return f
}

// NormalizeEvent canonicalizes an event. When status is absent or invalid it
// is derived from now against the [StartDate, EndDate] window.
func NormalizeEvent(e Event, fallbackCreator string) Event {
	if strings.TrimSpace(e.ID) == "" {
		e.ID = NewID("event")
	}
	e.Title = strings.TrimSpace(e.Title)
	e.ClubName = strings.TrimSpace(e.ClubName)
	e.Visibility = NormalizeVisibility(e.Visibility)
	if strings.TrimSpace(e.CreatedBy) == "" {
		e.CreatedBy = fallbackCreator
	}
	switch e.Status {
	case EventUpcoming, EventStarted, EventEnded:
	default:
		e.Status = DeriveEventStatus(e.StartDate, e.EndDate, time.Now().UnixMilli())
	}
	return e
}

// DeriveEventStatus maps now against the event window.
func DeriveEventStatus(startDate, endDate, now int64) string {
	switch {
	case startDate > 0 && now < startDate:
		return EventUpcoming
	case endDate > 0 && now > endDate:
		return EventEnded
	case startDate > 0:
		return EventStarted
	default:
		return EventUpcoming
	}
}
