package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/store"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestTracker(t *testing.T) (*Tracker, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemory()
	return NewWithClock(st, func() time.Time { return fixedNow }), st
}

func seedRegistration(t *testing.T, st *store.MemoryStore, userID, eventID string) {
	t.Helper()
	reg := model.Registration{EventID: eventID, Status: model.StatusRegistered, Quantity: 1}
	if err := st.Set(context.Background(), "registrations/"+userID+"/"+eventID, &reg); err != nil {
		t.Fatalf("seed registration: %v", err)
	}
}

func TestMarkSetsAttendedAndTimestamp(t *testing.T) {
	tr, st := newTestTracker(t)
	ctx := context.Background()
	seedRegistration(t, st, "u1", "e1")

	if err := tr.Mark(ctx, "u1", "e1", true); err != nil {
		t.Fatalf("mark: %v", err)
	}

	var reg model.Registration
	if err := st.Get(ctx, "registrations/u1/e1", &reg); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reg.Attended {
		t.Error("registration must read as attended")
	}
	if reg.AttendedAt == nil || !reg.AttendedAt.Equal(fixedNow) {
		t.Errorf("attendedAt = %v, want %v", reg.AttendedAt, fixedNow)
	}
	// The mark must not clobber the rest of the registration.
	if reg.Status != model.StatusRegistered {
		t.Errorf("status = %q, want %q", reg.Status, model.StatusRegistered)
	}
}

func TestUnmarkClearsTimestamp(t *testing.T) {
	tr, st := newTestTracker(t)
	ctx := context.Background()
	seedRegistration(t, st, "u1", "e1")

	if err := tr.Mark(ctx, "u1", "e1", true); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := tr.Mark(ctx, "u1", "e1", false); err != nil {
		t.Fatalf("unmark: %v", err)
	}

	var reg model.Registration
	if err := st.Get(ctx, "registrations/u1/e1", &reg); err != nil {
		t.Fatalf("get: %v", err)
	}
	if reg.Attended {
		t.Error("registration must read as not attended")
	}
	if reg.AttendedAt != nil {
		t.Errorf("attendedAt = %v, want nil", reg.AttendedAt)
	}
}

func TestMarkUnregisteredPair(t *testing.T) {
	tr, st := newTestTracker(t)
	err := tr.Mark(context.Background(), "u1", "e1", true)
	if !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("err = %v, want ErrNotRegistered", err)
	}
	if st.Exists("registrations/u1/e1") {
		t.Error("marking must never create a registration")
	}
}

func TestMarkManyPartial(t *testing.T) {
	tr, st := newTestTracker(t)
	seedRegistration(t, st, "u1", "e1")
	seedRegistration(t, st, "u3", "e1")

	res := tr.MarkMany(context.Background(), []Mark{
		{UserID: "u1", EventID: "e1", Attended: true},
		{UserID: "u2", EventID: "e1", Attended: true}, // never registered
		{UserID: "u3", EventID: "e1", Attended: true},
	})
	if res.OK() {
		t.Fatal("batch with an unregistered pair must not be OK")
	}
	if len(res.Succeeded) != 2 || len(res.Failed) != 1 {
		t.Fatalf("succeeded=%v failed=%v, want 2/1", res.Succeeded, res.Failed)
	}
	if res.Failed[0].UserID != "u2" {
		t.Errorf("failed user = %s, want u2", res.Failed[0].UserID)
	}

	// The item after the failure must still have been applied.
	var reg model.Registration
	if err := st.Get(context.Background(), "registrations/u3/e1", &reg); err != nil {
		t.Fatalf("get u3: %v", err)
	}
	if !reg.Attended {
		t.Error("u3 must be marked despite the u2 failure")
	}
}

func TestAttendeesSortedAndScoped(t *testing.T) {
	tr, st := newTestTracker(t)
	seedRegistration(t, st, "zed", "e1")
	seedRegistration(t, st, "amy", "e1")
	seedRegistration(t, st, "amy", "e2")

	attendees, err := tr.Attendees(context.Background(), "e1")
	if err != nil {
		t.Fatalf("attendees: %v", err)
	}
	if len(attendees) != 2 {
		t.Fatalf("len = %d, want 2", len(attendees))
	}
	if attendees[0].UserID != "amy" || attendees[1].UserID != "zed" {
		t.Errorf("order = %s,%s, want amy,zed", attendees[0].UserID, attendees[1].UserID)
	}
}

func TestEventStatsRounding(t *testing.T) {
	tr, st := newTestTracker(t)
	ctx := context.Background()

	// 6 attended out of 10 registered -> 60%.
	for i := 0; i < 10; i++ {
		uid := fmt.Sprintf("u%d", i)
		seedRegistration(t, st, uid, "e1")
		if i < 6 {
			if err := tr.Mark(ctx, uid, "e1", true); err != nil {
				t.Fatalf("mark %s: %v", uid, err)
			}
		}
	}

	stats, err := tr.EventStats(ctx, "e1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := Stats{TotalRegistered: 10, Attended: 6, NotAttended: 4, AttendanceRate: 60}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestEventStatsEmpty(t *testing.T) {
	tr, _ := newTestTracker(t)
	stats, err := tr.EventStats(context.Background(), "e1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats != (Stats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
}

// stubBans is a BanChecker with a fixed set of banned pairs.
type stubBans struct {
	banned map[string]bool // "uid/eid"
	err    error
}

func (s stubBans) IsBannedFromEvent(ctx context.Context, userID, eventID string) (model.BanState, error) {
	if s.err != nil {
		return model.BanState{}, s.err
	}
	if s.banned[userID+"/"+eventID] {
		return model.NewBan(fixedNow), nil
	}
	return model.NotBanned(), nil
}

func TestFilterEligibleExcludesBanned(t *testing.T) {
	tr, _ := newTestTracker(t)
	bans := stubBans{banned: map[string]bool{"u2/e1": true}}

	eligible, err := tr.FilterEligible(context.Background(), bans, []string{"u1", "u2", "u3"}, "e1")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(eligible) != 2 || eligible[0] != "u1" || eligible[1] != "u3" {
		t.Errorf("eligible = %v, want [u1 u3]", eligible)
	}
}

func TestFilterEligibleLookupFailure(t *testing.T) {
	tr, _ := newTestTracker(t)
	bans := stubBans{err: errors.New("boom")}

	if _, err := tr.FilterEligible(context.Background(), bans, []string{"u1"}, "e1"); err == nil {
		t.Fatal("a ban lookup failure must fail the filter, not pass the user")
	}
}
