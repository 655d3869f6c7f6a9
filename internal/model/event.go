package model

import "time"

// Event represents a single orderable event in the catalog, stored as a
// document at events/{eventId}.  Identity is the store-generated ID.
// Events are created and edited by administrators and never deleted;
// deactivation (manual or automatic at capacity) makes an event
// non-orderable while keeping its history intact.
//
// Fields:
//  ID          – store-generated identifier.
//  Title       – display name of the event.
//  Description – short description shown in listings.
//  Category    – category label used for filtering.
//  Price       – ticket price.
//  Duration    – human-readable duration ("2 hours").
//  Prize       – prize description, if any.
//  Image       – image URL.
//  Icon        – icon glyph shown on the event card.
//  MaxTickets  – capacity; zero means unlimited.
//  Active      – whether the event accepts registrations.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       int64     `json:"price"`
	Duration    string    `json:"duration"`
	Prize       string    `json:"prize"`
	Image       string    `json:"image"`
	Icon        string    `json:"icon"`
	MaxTickets  int       `json:"maxTickets,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Limited reports whether the event has a finite capacity.
func (e *Event) Limited() bool { return e.MaxTickets > 0 }

// Full reports whether the given registration count fills the event.
// Unlimited events are never full.
func (e *Event) Full(count int) bool {
	return e.Limited() && count >= e.MaxTickets
}

// Orderable reports whether the event can currently accept a new
// registration given the current participant count.
func (e *Event) Orderable(count int) bool {
	return e.Active && !e.Full(count)
}
