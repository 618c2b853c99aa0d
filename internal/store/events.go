package store

import (
	"context"

	"campusmate/api/internal/kv"
)

type Events struct {
	kv *kv.Store
}

func NewEvents(store *kv.Store) *Events {
	return &Events{kv: store}
}

func (r *Events) List(ctx context.Context) []Event {
	events := []Event{}
	r.kv.ReadJSON(ctx, kv.KeyEvents, &events)
	for i := range events {
		events[i] = NormalizeEvent(events[i], "")
	}
	return events
}

func (r *Events) GetByID(ctx context.Context, id string) (Event, bool) {
	for _, e := range r.List(ctx) {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

func (r *Events) Add(ctx context.Context, event Event) (Event, error) {
	event = NormalizeEvent(event, event.CreatedBy)
	events := r.List(ctx)
	events = append(events, event)
	return event, r.kv.WriteJSON(ctx, kv.KeyEvents, events)
}

func (r *Events) UpdateByID(ctx context.Context, id string, updated Event) (bool, error) {
	events := r.List(ctx)
	for i := range events {
		if events[i].ID == id {
			updated.ID = id
			events[i] = NormalizeEvent(updated, events[i].CreatedBy)
			return true, r.kv.WriteJSON(ctx, kv.KeyEvents, events)
		}
	}
	return false, nil
}

func (r *Events) DeleteByID(ctx context.Context, id string) (bool, error) {
	events := r.List(ctx)
	for i := range events {
		if events[i].ID == id {
			events = append(events[:i], events[i+1:]...)
			return true, r.kv.WriteJSON(ctx, kv.KeyEvents, events)
		}
	}
	return false, nil
}
