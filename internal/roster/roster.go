// Package roster assembles the admin user roster: every profile joined
// with its registrations and the matching event details.  It is read-only
// and scan-based, like the listings in the original admin panel.
package roster

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/store"
)

const (
	usersRoot         = "users"
	eventsRoot        = "events"
	registrationsRoot = "registrations"
)

// Directory builds user summaries from the document store.
type Directory struct {
	store store.Store
}

// New returns a Directory bound to the given store.
func New(st store.Store) *Directory {
	return &Directory{store: st}
}

// RegisteredEvent is one row of a user's registration history with the
// event details already joined in.  Registrations pointing at events
// that no longer decode are skipped.
type RegisteredEvent struct {
	EventID       string                   `json:"eventId"`
	EventTitle    string                   `json:"eventTitle"`
	EventCategory string                   `json:"eventCategory"`
	RegisteredAt  time.Time                `json:"registeredAt"`
	Status        model.RegistrationStatus `json:"status"`
	Attended      bool                     `json:"attended"`
}

// UserSummary is one roster row: the profile plus registration history
// and totals.  Banned mirrors the profile's global ban flag for the
// selection logic in the admin panel.
type UserSummary struct {
	UserID           string            `json:"userId"`
	Profile          model.Profile     `json:"profile"`
	RegisteredEvents []RegisteredEvent `json:"registeredEvents"`
	TotalEvents      int               `json:"totalEvents"`
	Banned           bool              `json:"banned"`
}

// Users returns a summary for every user profile, ordered by user ID.
// Three scans cover the whole join; per-user lookups would be quadratic.
func (d *Directory) Users(ctx context.Context) ([]UserSummary, error) {
	usersRaw, err := d.store.Scan(ctx, usersRoot)
	if err != nil {
		return nil, err
	}
	eventsRaw, err := d.store.Scan(ctx, eventsRoot)
	if err != nil {
		return nil, err
	}
	regsRaw, err := d.store.Scan(ctx, registrationsRoot)
	if err != nil {
		return nil, err
	}

	events := make(map[string]model.Event, len(eventsRaw))
	for id, doc := range eventsRaw {
		var ev model.Event
		if err := json.Unmarshal(doc, &ev); err != nil {
			continue
		}
		events[id] = ev
	}

	regsByUser := make(map[string]map[string]model.Registration)
	for rel, doc := range regsRaw {
		i := strings.IndexByte(rel, '/')
		if i <= 0 || i == len(rel)-1 {
			continue
		}
		uid, eid := rel[:i], rel[i+1:]
		var reg model.Registration
		if err := json.Unmarshal(doc, &reg); err != nil {
			continue
		}
		if regsByUser[uid] == nil {
			regsByUser[uid] = make(map[string]model.Registration)
		}
		regsByUser[uid][eid] = reg
	}

	summaries := make([]UserSummary, 0, len(usersRaw))
	for uid, doc := range usersRaw {
		var prof model.Profile
		if err := json.Unmarshal(doc, &prof); err != nil {
			continue
		}
		sum := UserSummary{
			UserID:  uid,
			Profile: prof,
			Banned:  prof.Banned,
		}
		for eid, reg := range regsByUser[uid] {
			ev, ok := events[eid]
			if !ok {
				continue
			}
			sum.RegisteredEvents = append(sum.RegisteredEvents, RegisteredEvent{
				EventID:       eid,
				EventTitle:    ev.Title,
				EventCategory: ev.Category,
				RegisteredAt:  reg.RegisteredAt,
				Status:        reg.Status,
				Attended:      reg.Attended,
			})
		}
		sort.Slice(sum.RegisteredEvents, func(i, j int) bool {
			return sum.RegisteredEvents[i].EventID < sum.RegisteredEvents[j].EventID
		})
		sum.TotalEvents = len(sum.RegisteredEvents)
		summaries = append(summaries, sum)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UserID < summaries[j].UserID
	})
	return summaries, nil
}
