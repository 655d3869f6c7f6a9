// Package cart holds the transient per-user cart and the checkout
// orchestration that drains it through the registration ledger.  Carts
// are explicit state objects with named transitions; they are never
// persisted and evaporate with the session.
package cart

import (
	"errors"
	"sync"

	"github.com/iliyamo/event-registration/internal/model"
)

// ErrNotAuthenticated is returned when a checkout is attempted without a
// signed-in user.
var ErrNotAuthenticated = errors.New("cart: not authenticated")

// Item is one cart entry: a snapshot of the event plus a quantity, which
// is always exactly 1.  The system sells at most one ticket per event per
// user, so adding an already-present event never increments.
type Item struct {
	Event    model.Event `json:"event"`
	Quantity int         `json:"quantity"`
}

// ToggleOutcome describes what a toggle attempt did, or why it refused.
type ToggleOutcome string

const (
	// OutcomeAdded means the event was put in the cart.
	OutcomeAdded ToggleOutcome = "added"
	// OutcomeRemoved means the event was taken out of the cart.
	OutcomeRemoved ToggleOutcome = "removed"
	// OutcomeLoginRequired means the caller is not signed in; the cart
	// was not touched and the UI should prompt for login.
	OutcomeLoginRequired ToggleOutcome = "login_required"
	// OutcomeAlreadyRegistered means the user already holds a
	// registration for the event.
	OutcomeAlreadyRegistered ToggleOutcome = "already_registered"
	// OutcomeEventInactive means the event is deactivated.
	OutcomeEventInactive ToggleOutcome = "event_inactive"
	// OutcomeEventFull means occupancy reached capacity; the UI shows a
	// dedicated capacity notice for this one.
	OutcomeEventFull ToggleOutcome = "event_full"
)

// Cart is an ordered set of items keyed by event ID.  All transitions are
// safe for concurrent use by a session's parallel requests.
type Cart struct {
	mu    sync.Mutex
	items []Item
}

// NewCart returns an empty cart.
func NewCart() *Cart { return &Cart{} }

// Toggle flips the event's cart membership, subject to the gates the shop
// applies: the caller must be signed in, must not already be registered,
// and the event must be active and under capacity.  Refused toggles do
// not change the cart, whatever its prior state.
func (c *Cart) Toggle(ev model.Event, userRegs map[string]model.Registration, counts map[string]int, authenticated bool) ToggleOutcome {
	if !authenticated {
		return OutcomeLoginRequired
	}
	if _, registered := userRegs[ev.ID]; registered {
		return OutcomeAlreadyRegistered
	}
	if !ev.Active {
		return OutcomeEventInactive
	}
	if ev.Full(counts[ev.ID]) {
		return OutcomeEventFull
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removeLocked(ev.ID) {
		return OutcomeRemoved
	}
	c.items = append(c.items, Item{Event: ev, Quantity: 1})
	return OutcomeAdded
}

// Add puts the event in the cart with quantity 1.  Adding a present
// event is a no-op, not an increment; the return value reports whether
// the cart changed.
func (c *Cart) Add(ev model.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.Event.ID == ev.ID {
			return false
		}
	}
	c.items = append(c.items, Item{Event: ev, Quantity: 1})
	return true
}

// Remove takes the event out of the cart; absent events are a no-op.
func (c *Cart) Remove(eventID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(eventID)
}

func (c *Cart) removeLocked(eventID string) bool {
	for i, it := range c.items {
		if it.Event.ID == eventID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns a copy of the cart contents in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of items in the cart.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// RetainFailed keeps only the listed event IDs, preserving order.  After
// a checkout the cart must equal exactly the set of items whose
// registration did not succeed, so the user can retry them.
func (c *Cart) RetainFailed(failedIDs map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	for _, it := range c.items {
		if failedIDs[it.Event.ID] {
			kept = append(kept, it)
		}
	}
	c.items = kept
}

// TotalPrice sums price×quantity across the cart.
func (c *Cart) TotalPrice() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, it := range c.items {
		total += it.Event.Price * int64(it.Quantity)
	}
	return total
}

// TotalItems sums quantities across the cart.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}
