package cart

import (
	"testing"

	"github.com/iliyamo/event-registration/internal/model"
)

func activeEvent(id string, price int64) model.Event {
	return model.Event{ID: id, Title: "Event " + id, Price: price, Active: true}
}

func TestToggleAddsAndRemoves(t *testing.T) {
	c := NewCart()
	ev := activeEvent("e1", 100)
	none := map[string]model.Registration{}
	counts := map[string]int{}

	if got := c.Toggle(ev, none, counts, true); got != OutcomeAdded {
		t.Fatalf("first toggle = %q, want added", got)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
	if got := c.Toggle(ev, none, counts, true); got != OutcomeRemoved {
		t.Fatalf("second toggle = %q, want removed", got)
	}
	if c.Len() != 0 {
		t.Fatalf("len = %d, want 0", c.Len())
	}
}

func TestToggleGates(t *testing.T) {
	none := map[string]model.Registration{}

	cases := []struct {
		name          string
		ev            model.Event
		regs          map[string]model.Registration
		counts        map[string]int
		authenticated bool
		want          ToggleOutcome
	}{
		{
			name: "unauthenticated", ev: activeEvent("e1", 0),
			regs: none, authenticated: false, want: OutcomeLoginRequired,
		},
		{
			name: "already registered", ev: activeEvent("e1", 0),
			regs:          map[string]model.Registration{"e1": {EventID: "e1"}},
			authenticated: true, want: OutcomeAlreadyRegistered,
		},
		{
			name: "inactive", ev: model.Event{ID: "e1", Active: false},
			regs: none, authenticated: true, want: OutcomeEventInactive,
		},
		{
			name: "full", ev: model.Event{ID: "e1", Active: true, MaxTickets: 2},
			regs: none, counts: map[string]int{"e1": 2},
			authenticated: true, want: OutcomeEventFull,
		},
		{
			name: "unlimited never full", ev: activeEvent("e1", 0),
			regs: none, counts: map[string]int{"e1": 9000},
			authenticated: true, want: OutcomeAdded,
		},
	}
	for _, tc := range cases {
		c := NewCart()
		if got := c.Toggle(tc.ev, tc.regs, tc.counts, tc.authenticated); got != tc.want {
			t.Errorf("%s: outcome = %q, want %q", tc.name, got, tc.want)
		}
		if tc.want != OutcomeAdded && c.Len() != 0 {
			t.Errorf("%s: refused toggle must leave the cart empty", tc.name)
		}
	}
}

func TestAddIsNotAnIncrement(t *testing.T) {
	c := NewCart()
	ev := activeEvent("e1", 100)

	if !c.Add(ev) {
		t.Fatal("first add must change the cart")
	}
	if c.Add(ev) {
		t.Fatal("second add must be a no-op")
	}
	if c.TotalItems() != 1 {
		t.Errorf("total items = %d, want 1", c.TotalItems())
	}
}

func TestRemoveAbsent(t *testing.T) {
	c := NewCart()
	if c.Remove("ghost") {
		t.Error("removing an absent event must report no change")
	}
}

func TestRetainFailedPreservesOrder(t *testing.T) {
	c := NewCart()
	for _, id := range []string{"e1", "e2", "e3", "e4"} {
		c.Add(activeEvent(id, 0))
	}

	c.RetainFailed(map[string]bool{"e4": true, "e2": true})

	items := c.Items()
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Event.ID != "e2" || items[1].Event.ID != "e4" {
		t.Errorf("order = %s,%s, want e2,e4", items[0].Event.ID, items[1].Event.ID)
	}
}

func TestTotals(t *testing.T) {
	c := NewCart()
	c.Add(activeEvent("e1", 150))
	c.Add(activeEvent("e2", 250))

	if got := c.TotalPrice(); got != 400 {
		t.Errorf("total price = %d, want 400", got)
	}
	if got := c.TotalItems(); got != 2 {
		t.Errorf("total items = %d, want 2", got)
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	c := NewCart()
	c.Add(activeEvent("e1", 0))

	items := c.Items()
	items[0].Event.ID = "mutated"

	if c.Items()[0].Event.ID != "e1" {
		t.Error("mutating the returned slice must not affect the cart")
	}
}

func TestBookIsPerUser(t *testing.T) {
	b := NewBook()
	b.For("u1").Add(activeEvent("e1", 0))

	if b.For("u2").Len() != 0 {
		t.Error("carts must not be shared across users")
	}
	if b.For("u1").Len() != 1 {
		t.Error("the same user must get the same cart back")
	}

	b.Drop("u1")
	if b.For("u1").Len() != 0 {
		t.Error("dropped cart must come back empty")
	}
}
