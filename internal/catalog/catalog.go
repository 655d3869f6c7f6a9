// Package catalog manages the event catalog: admin create/update/toggle
// plus the listings consumed by the shop UI.  Events live at
// events/{eventId} and are never deleted; deactivation keeps history
// intact while making an event non-orderable.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/store"
)

// ErrNotFound is returned when no event exists for the given ID.
var ErrNotFound = errors.New("catalog: event not found")

const eventsRoot = "events"

// Catalog provides event catalog operations on top of the document store.
type Catalog struct {
	store store.Store
	now   func() time.Time
}

// New returns a Catalog bound to the given store.
func New(st store.Store) *Catalog {
	return &Catalog{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// NewWithClock returns a Catalog with a custom clock, used by tests.
func NewWithClock(st store.Store, now func() time.Time) *Catalog {
	c := New(st)
	if now != nil {
		c.now = now
	}
	return c
}

func eventPath(eventID string) string { return eventsRoot + "/" + eventID }

// Create stores a new event with a generated ID.  New events start
// active; creation and update timestamps are stamped here.
func (c *Catalog) Create(ctx context.Context, draft model.Event) (model.Event, error) {
	now := c.now()
	draft.ID = c.store.GenerateID(eventsRoot)
	draft.Active = true
	draft.CreatedAt = now
	draft.UpdatedAt = now
	if err := c.store.Set(ctx, eventPath(draft.ID), &draft); err != nil {
		return model.Event{}, err
	}
	return draft, nil
}

// Get returns the event with the given ID.
func (c *Catalog) Get(ctx context.Context, eventID string) (model.Event, error) {
	var ev model.Event
	err := c.store.Get(ctx, eventPath(eventID), &ev)
	if errors.Is(err, store.ErrNotFound) {
		return model.Event{}, ErrNotFound
	}
	if err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// Update merges the given fields into an event and stamps updatedAt.
// Identity and creation fields cannot be changed.
func (c *Catalog) Update(ctx context.Context, eventID string, fields map[string]any) error {
	if _, err := c.Get(ctx, eventID); err != nil {
		return err
	}
	delete(fields, "id")
	delete(fields, "createdAt")
	fields["updatedAt"] = c.now()
	return c.store.Update(ctx, eventPath(eventID), fields)
}

// SetActive flips the event's active flag.  Admins use it to deactivate
// an event manually; the ledger uses the same path when an event fills.
func (c *Catalog) SetActive(ctx context.Context, eventID string, active bool) error {
	return c.Update(ctx, eventID, map[string]any{"active": active})
}

// All returns every event in the catalog, inactive ones included, ordered
// by creation time then ID for deterministic output.  Filtering inactive
// events is a presentation concern.
func (c *Catalog) All(ctx context.Context) ([]model.Event, error) {
	raw, err := c.store.Scan(ctx, eventsRoot)
	if err != nil {
		return nil, err
	}
	events := make([]model.Event, 0, len(raw))
	for id, doc := range raw {
		var ev model.Event
		if err := json.Unmarshal(doc, &ev); err != nil {
			continue // skip undecodable documents rather than failing the listing
		}
		if ev.ID == "" {
			ev.ID = id
		}
		events = append(events, ev)
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}
