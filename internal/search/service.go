package search

import (
	"log"
	"strings"

	"campusmate/api/internal/store"
)

// Service fronts Meilisearch with an in-memory substring fallback. The
// caller passes only the records the viewer may see, so Meilisearch hits
// are intersected with that set and access control stays in one place.
type Service struct {
	meili *Meili
}

// NewService creates the facade. meili may be nil when not configured.
func NewService(meili *Meili) *Service {
	return &Service{meili: meili}
}

// Search finds q in the viewer-visible tasks and events.
func (s *Service) Search(q string, tasks []store.Task, events []store.Event) []Result {
	q = strings.TrimSpace(q)
	if q == "" {
		return []Result{}
	}

	if s.meili != nil && s.meili.Healthy() {
		hits, err := s.meili.Search(q, len(tasks)+len(events))
		if err == nil {
			return restrictToVisible(hits, tasks, events)
		}
		log.Printf("search: meilisearch error, falling back to substring scan: %v", err)
	}

	return substringScan(q, tasks, events)
}

// IndexTask pushes a task into Meilisearch, fire-and-forget.
func (s *Service) IndexTask(t store.Task) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexTask(TaskRecord{ID: t.ID, Text: t.Text, Owner: t.Owner}); err != nil {
			log.Printf("search: index task %s: %v", t.ID, err)
		}
	}()
}

// IndexEvent pushes an event into Meilisearch, fire-and-forget.
func (s *Service) IndexEvent(e store.Event) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		record := EventRecord{
			ID:          e.ID,
			Title:       e.Title,
			ClubName:    e.ClubName,
			Description: e.Description,
			CreatedBy:   e.CreatedBy,
		}
		if err := s.meili.IndexEvent(record); err != nil {
			log.Printf("search: index event %s: %v", e.ID, err)
		}
	}()
}

// RemoveTask deletes a task from the index, fire-and-forget.
func (s *Service) RemoveTask(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteTask(id); err != nil {
			log.Printf("search: delete task %s: %v", id, err)
		}
	}()
}

// RemoveEvent deletes an event from the index, fire-and-forget.
func (s *Service) RemoveEvent(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteEvent(id); err != nil {
			log.Printf("search: delete event %s: %v", id, err)
		}
	}()
}

func restrictToVisible(hits []Result, tasks []store.Task, events []store.Event) []Result {
	taskIDs := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		taskIDs[t.ID] = true
	}
	eventIDs := make(map[string]bool, len(events))
	for _, e := range events {
		eventIDs[e.ID] = true
	}

	kept := []Result{}
	for _, hit := range hits {
		switch hit.Type {
		case ResultTask:
			if taskIDs[hit.ID] {
				kept = append(kept, hit)
			}
		case ResultEvent:
			if eventIDs[hit.ID] {
				kept = append(kept, hit)
			}
		}
	}
	return kept
}

func substringScan(q string, tasks []store.Task, events []store.Event) []Result {
	needle := strings.ToLower(q)
	results := []Result{}
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Text), needle) {
			results = append(results, Result{Type: ResultTask, ID: t.ID, Title: t.Text, Snippet: t.Text, Owner: t.Owner})
		}
	}
	for _, e := range events {
		haystack := strings.ToLower(e.Title + " " + e.ClubName + " " + e.Description)
		if strings.Contains(haystack, needle) {
			results = append(results, Result{Type: ResultEvent, ID: e.ID, Title: e.Title, Snippet: e.Description, Owner: e.CreatedBy})
		}
	}
	return results
}
