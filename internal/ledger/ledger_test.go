package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/store"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*Ledger, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemory()
	return NewWithClock(st, func() time.Time { return fixedNow }), st
}

func seedEvent(t *testing.T, st *store.MemoryStore, ev model.Event) {
	t.Helper()
	if err := st.Set(context.Background(), "events/"+ev.ID, &ev); err != nil {
		t.Fatalf("seed event: %v", err)
	}
}

func TestRegisterWritesRegistration(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := context.Background()
	seedEvent(t, st, model.Event{ID: "e1", Title: "Hackathon", Active: true})

	err := l.Register(ctx, "u1", "e1", model.Registration{EventName: "Hackathon"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	regs, err := l.UserRegistrations(ctx, "u1")
	if err != nil {
		t.Fatalf("user registrations: %v", err)
	}
	reg, ok := regs["e1"]
	if !ok {
		t.Fatalf("registration for e1 missing, got %v", regs)
	}
	if reg.Status != model.StatusRegistered {
		t.Errorf("status = %q, want %q", reg.Status, model.StatusRegistered)
	}
	if !reg.RegisteredAt.Equal(fixedNow) {
		t.Errorf("registeredAt = %v, want %v", reg.RegisteredAt, fixedNow)
	}
	if reg.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", reg.Quantity)
	}
	if reg.Attended {
		t.Error("new registration must not be marked attended")
	}
}

func TestRegisterUnknownEvent(t *testing.T) {
	l, _ := newTestLedger(t)
	err := l.Register(context.Background(), "u1", "missing", model.Registration{})
	if !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("err = %v, want ErrEventNotFound", err)
	}
}

func TestRegisterInactiveEvent(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := context.Background()
	seedEvent(t, st, model.Event{ID: "e1", Active: false})

	err := l.Register(ctx, "u1", "e1", model.Registration{})
	if !errors.Is(err, ErrEventInactive) {
		t.Fatalf("err = %v, want ErrEventInactive", err)
	}
	if st.Exists("registrations/u1/e1") {
		t.Error("refused registration must not be written")
	}
}

func TestRegisterCapacityRefusal(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := context.Background()
	seedEvent(t, st, model.Event{ID: "e1", Active: true, MaxTickets: 2})

	for i := 0; i < 2; i++ {
		uid := fmt.Sprintf("u%d", i)
		if err := l.Register(ctx, uid, "e1", model.Registration{}); err != nil {
			t.Fatalf("register %s: %v", uid, err)
		}
	}

	// The event is now full and auto-deactivated; the third attempt must
	// still report the capacity error, not the inactive one, so the
	// caller can say "full" instead of "no longer available".
	err := l.Register(ctx, "u9", "e1", model.Registration{})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
	if st.Exists("registrations/u9/e1") {
		t.Error("refused registration must not be written")
	}

	count, err := l.CountForEvent(ctx, "e1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestRegisterCapacityRefusalWhileActive(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := context.Background()
	seedEvent(t, st, model.Event{ID: "e1", Active: true, MaxTickets: 1})

	// Seed a registration directly so the event is full but still
	// flagged active, as after a manual reactivation.
	reg := model.Registration{EventID: "e1"}
	if err := st.Set(ctx, "registrations/u0/e1", &reg); err != nil {
		t.Fatalf("seed registration: %v", err)
	}

	err := l.Register(ctx, "u1", "e1", model.Registration{})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
}

func TestRegisterAutoDeactivatesAtCapacity(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := context.Background()
	seedEvent(t, st, model.Event{ID: "e1", Active: true, MaxTickets: 1})

	if err := l.Register(ctx, "u1", "e1", model.Registration{}); err != nil {
		t.Fatalf("register: %v", err)
	}

	var ev model.Event
	if err := st.Get(ctx, "events/e1", &ev); err != nil {
		t.Fatalf("get event: %v", err)
	}
	if ev.Active {
		t.Error("event must be deactivated once the last slot is taken")
	}
}

func TestRegisterDeactivationFailureDoesNotFailRegistration(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := context.Background()
	seedEvent(t, st, model.Event{ID: "e1", Active: true, MaxTickets: 1})
	st.FailPaths["events/e1"] = true

	if err := l.Register(ctx, "u1", "e1", model.Registration{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !st.Exists("registrations/u1/e1") {
		t.Error("registration must survive a failed deactivation")
	}
}

func TestRegisterOverwriteKeepsCountStable(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := context.Background()
	seedEvent(t, st, model.Event{ID: "e1", Active: true, MaxTickets: 5})

	if err := l.Register(ctx, "u1", "e1", model.Registration{PaymentID: "TXN1"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := l.Register(ctx, "u1", "e1", model.Registration{PaymentID: "TXN2"}); err != nil {
		t.Fatalf("second register: %v", err)
	}

	count, err := l.CountForEvent(ctx, "e1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 after overwrite", count)
	}
	regs, _ := l.UserRegistrations(ctx, "u1")
	if regs["e1"].PaymentID != "TXN2" {
		t.Errorf("paymentId = %q, want the later write", regs["e1"].PaymentID)
	}
}

func TestRegisterConcurrentNeverExceedsCapacity(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := context.Background()
	const capacity = 5
	seedEvent(t, st, model.Event{ID: "e1", Active: true, MaxTickets: capacity})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = l.Register(ctx, fmt.Sprintf("u%d", i), "e1", model.Registration{})
		}(i)
	}
	wg.Wait()

	count, err := l.CountForEvent(ctx, "e1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != capacity {
		t.Errorf("count = %d, want exactly %d", count, capacity)
	}
}

func TestUserRegistrationsEmpty(t *testing.T) {
	l, _ := newTestLedger(t)
	regs, err := l.UserRegistrations(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("user registrations: %v", err)
	}
	if regs == nil {
		t.Fatal("map must be empty, not nil")
	}
	if len(regs) != 0 {
		t.Errorf("len = %d, want 0", len(regs))
	}
}

func TestParticipantCounts(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := context.Background()
	seedEvent(t, st, model.Event{ID: "e1", Active: true})
	seedEvent(t, st, model.Event{ID: "e2", Active: true})

	for _, pair := range [][2]string{{"u1", "e1"}, {"u2", "e1"}, {"u2", "e2"}} {
		if err := l.Register(ctx, pair[0], pair[1], model.Registration{}); err != nil {
			t.Fatalf("register %v: %v", pair, err)
		}
	}

	counts, err := l.ParticipantCounts(ctx)
	if err != nil {
		t.Fatalf("participant counts: %v", err)
	}
	if counts["e1"] != 2 || counts["e2"] != 1 {
		t.Errorf("counts = %v, want e1:2 e2:1", counts)
	}
}

func TestEventRegistrationsJoinsProfiles(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := context.Background()
	seedEvent(t, st, model.Event{ID: "e1", Active: true})

	prof := model.Profile{Name: "Dana", College: "MIT"}
	if err := st.Set(ctx, "users/u1", &prof); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	if err := l.Register(ctx, "u1", "e1", model.Registration{}); err != nil {
		t.Fatalf("register u1: %v", err)
	}
	// u2 has no profile; the roster must still list the registration.
	if err := l.Register(ctx, "u2", "e1", model.Registration{}); err != nil {
		t.Fatalf("register u2: %v", err)
	}

	parts, err := l.EventRegistrations(ctx, "e1")
	if err != nil {
		t.Fatalf("event registrations: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("len = %d, want 2", len(parts))
	}
	if parts[0].UserID != "u1" || parts[1].UserID != "u2" {
		t.Errorf("order = %s,%s, want u1,u2", parts[0].UserID, parts[1].UserID)
	}
	if parts[0].Profile.Name != "Dana" {
		t.Errorf("profile name = %q, want Dana", parts[0].Profile.Name)
	}
	if parts[1].Profile.Name != "" {
		t.Errorf("missing profile must stay zero, got %q", parts[1].Profile.Name)
	}
}

func TestEventStats(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := context.Background()
	seedEvent(t, st, model.Event{ID: "e1", Active: true})
	seedEvent(t, st, model.Event{ID: "e2", Active: false})

	if err := l.Register(ctx, "u1", "e1", model.Registration{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	confirmed := model.Registration{EventID: "e1", Status: model.StatusConfirmed}
	if err := st.Set(ctx, "registrations/u2/e1", &confirmed); err != nil {
		t.Fatalf("seed confirmed: %v", err)
	}

	stats, err := l.EventStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := Stats{TotalEvents: 2, ActiveEvents: 1, TotalRegistrations: 2, ConfirmedPayments: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}
