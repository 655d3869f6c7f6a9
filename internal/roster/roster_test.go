package roster

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/store"
)

func TestUsersJoinsRegistrationsAndEvents(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	d := New(st)

	set := func(path string, v any) {
		t.Helper()
		if err := st.Set(ctx, path, v); err != nil {
			t.Fatalf("seed %s: %v", path, err)
		}
	}

	set("users/zoe", &model.Profile{Name: "Zoe"})
	set("users/amy", &model.Profile{Name: "Amy", Banned: true})
	set("events/e1", &model.Event{ID: "e1", Title: "Hackathon", Category: "tech", Active: true})
	set("events/e2", &model.Event{ID: "e2", Title: "Quiz", Category: "fun", Active: true})

	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	set("registrations/amy/e1", &model.Registration{EventID: "e1", RegisteredAt: at, Status: model.StatusRegistered, Attended: true})
	set("registrations/amy/e2", &model.Registration{EventID: "e2", RegisteredAt: at, Status: model.StatusRegistered})
	// Registration against an event that no longer exists is skipped.
	set("registrations/amy/ghost", &model.Registration{EventID: "ghost", RegisteredAt: at})

	users, err := d.Users(ctx)
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len = %d, want 2", len(users))
	}
	if users[0].UserID != "amy" || users[1].UserID != "zoe" {
		t.Fatalf("order = %s,%s, want amy,zoe", users[0].UserID, users[1].UserID)
	}

	amy := users[0]
	if !amy.Banned {
		t.Error("amy must carry the global ban flag")
	}
	if amy.TotalEvents != 2 {
		t.Fatalf("amy total = %d, want 2 (ghost skipped)", amy.TotalEvents)
	}
	if amy.RegisteredEvents[0].EventID != "e1" || amy.RegisteredEvents[1].EventID != "e2" {
		t.Errorf("amy events = %v, want e1,e2", amy.RegisteredEvents)
	}
	if amy.RegisteredEvents[0].EventTitle != "Hackathon" {
		t.Errorf("title = %q, want Hackathon", amy.RegisteredEvents[0].EventTitle)
	}
	if !amy.RegisteredEvents[0].Attended {
		t.Error("attendance flag must carry through the join")
	}

	zoe := users[1]
	if zoe.TotalEvents != 0 || len(zoe.RegisteredEvents) != 0 {
		t.Errorf("zoe = %+v, want no registrations", zoe)
	}
}

func TestUsersEmptyStore(t *testing.T) {
	d := New(store.NewMemory())
	users, err := d.Users(context.Background())
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("len = %d, want 0", len(users))
	}
}
