// Package ledger owns the (user, event) registration mapping and the
// capacity admission protocol.  A registration exists only if admission
// passed at creation time; the pair path registrations/{userId}/{eventId}
// is what enforces at-most-one registration per user per event.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/store"
)

// Sentinel errors surfaced by the admission protocol.  Handlers translate
// them into distinct user-facing messages; capacity in particular must be
// distinguishable from generic failure.
var (
	// ErrCapacityExceeded means the event is at full capacity; no write
	// was performed.
	ErrCapacityExceeded = errors.New("ledger: event is at full capacity")

	// ErrEventInactive means the event no longer accepts registrations.
	ErrEventInactive = errors.New("ledger: event is no longer available")

	// ErrEventNotFound means the event does not exist.
	ErrEventNotFound = errors.New("ledger: event not found")
)

const (
	registrationsRoot = "registrations"
	eventsRoot        = "events"
	usersRoot         = "users"
)

func regPath(userID, eventID string) string {
	return registrationsRoot + "/" + userID + "/" + eventID
}

// Ledger performs capacity admission and registration queries.
//
// Admission is a read-count-compare-write sequence with no transactional
// guard in the backing store, so the ledger serializes it per event
// through an in-process lock.  That upholds the sequential capacity
// invariant for a single server; two independent server processes racing
// for the last slot can still oversubscribe by one.  That gap is
// documented rather than papered over.
type Ledger struct {
	store store.Store
	locks eventLocks
	now   func() time.Time
}

// New returns a Ledger bound to the given store.
func New(st store.Store) *Ledger {
	return &Ledger{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// NewWithClock returns a Ledger with a custom clock, used by tests.
func NewWithClock(st store.Store, now func() time.Time) *Ledger {
	l := New(st)
	if now != nil {
		l.now = now
	}
	return l
}

// Register admits a user to an event and writes the registration.
//
// The contract, in order:
//  1. Re-read the event; missing -> ErrEventNotFound.
//  2. Capacity set and current count >= maxTickets -> ErrCapacityExceeded,
//     no write.  Capacity is checked before the active flag so a full
//     event, which auto-deactivation has flipped inactive, still refuses
//     with the capacity error rather than the generic inactive one.
//  3. Inactive -> ErrEventInactive, no write.
//  4. Write the registration at (userID, eventID) unconditionally.  A
//     prior registration for the pair is overwritten, not rejected:
//     re-registering is idempotent-by-overwrite.
//  5. Recount; at or over capacity -> flip the event inactive.  A failed
//     deactivation is logged and does not fail the registration.
func (l *Ledger) Register(ctx context.Context, userID, eventID string, details model.Registration) error {
	unlock := l.locks.lock(eventID)
	defer unlock()

	var ev model.Event
	err := l.store.Get(ctx, eventsRoot+"/"+eventID, &ev)
	if errors.Is(err, store.ErrNotFound) {
		return ErrEventNotFound
	}
	if err != nil {
		return err
	}
	if ev.Limited() {
		count, err := l.CountForEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if count >= ev.MaxTickets {
			return ErrCapacityExceeded
		}
	}
	if !ev.Active {
		return ErrEventInactive
	}

	details.EventID = eventID
	details.RegisteredAt = l.now()
	details.Status = model.StatusRegistered
	details.Attended = false
	details.AttendedAt = nil
	if details.Quantity == 0 {
		details.Quantity = 1
	}
	if err := l.store.Set(ctx, regPath(userID, eventID), &details); err != nil {
		return err
	}

	if ev.Limited() {
		l.deactivateIfFull(ctx, eventID, ev.MaxTickets)
	}
	return nil
}

// deactivateIfFull recounts after a successful write and flips the event
// inactive once capacity is reached.  Failures here are logged only; the
// registration that triggered the recount has already succeeded.
func (l *Ledger) deactivateIfFull(ctx context.Context, eventID string, maxTickets int) {
	count, err := l.CountForEvent(ctx, eventID)
	if err != nil {
		log.Printf("ledger: post-registration recount for event %s failed: %v", eventID, err)
		return
	}
	if count < maxTickets {
		return
	}
	err = l.store.Update(ctx, eventsRoot+"/"+eventID, map[string]any{
		"active":    false,
		"updatedAt": l.now(),
	})
	if err != nil {
		log.Printf("ledger: auto-deactivate of full event %s failed: %v", eventID, err)
		return
	}
	log.Printf("ledger: event %s deactivated automatically at capacity (%d/%d)", eventID, count, maxTickets)
}

// UserRegistrations returns the user's registrations keyed by event ID.
// The map is empty, never nil, when the user holds none.
func (l *Ledger) UserRegistrations(ctx context.Context, userID string) (map[string]model.Registration, error) {
	raw, err := l.store.Scan(ctx, registrationsRoot+"/"+userID)
	if err != nil {
		return nil, err
	}
	regs := make(map[string]model.Registration, len(raw))
	for eventID, doc := range raw {
		var reg model.Registration
		if err := json.Unmarshal(doc, &reg); err != nil {
			continue
		}
		regs[eventID] = reg
	}
	return regs, nil
}

// CountForEvent scans all registrations and counts those for the event.
func (l *Ledger) CountForEvent(ctx context.Context, eventID string) (int, error) {
	raw, err := l.store.Scan(ctx, registrationsRoot)
	if err != nil {
		return 0, err
	}
	count := 0
	for rel := range raw {
		if _, eid, ok := splitRegKey(rel); ok && eid == eventID {
			count++
		}
	}
	return count, nil
}

// ParticipantCounts returns the registration count per event across the
// whole ledger in a single scan.  The shop uses it for occupancy bars.
func (l *Ledger) ParticipantCounts(ctx context.Context) (map[string]int, error) {
	raw, err := l.store.Scan(ctx, registrationsRoot)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for rel := range raw {
		if _, eid, ok := splitRegKey(rel); ok {
			counts[eid]++
		}
	}
	return counts, nil
}

// Participant is one row of an event roster: the registration joined with
// the registrant's profile.  A missing profile leaves the zero value.
type Participant struct {
	UserID       string             `json:"userId"`
	Registration model.Registration `json:"registration"`
	Profile      model.Profile      `json:"profile"`
}

// EventRegistrations returns every registration for the event joined with
// the user profiles, ordered by user ID for deterministic output.
func (l *Ledger) EventRegistrations(ctx context.Context, eventID string) ([]Participant, error) {
	raw, err := l.store.Scan(ctx, registrationsRoot)
	if err != nil {
		return nil, err
	}
	participants := make([]Participant, 0)
	for rel, doc := range raw {
		uid, eid, ok := splitRegKey(rel)
		if !ok || eid != eventID {
			continue
		}
		var reg model.Registration
		if err := json.Unmarshal(doc, &reg); err != nil {
			continue
		}
		p := Participant{UserID: uid, Registration: reg}
		// Profile lookups are best-effort; a missing or failed profile
		// read must not hide the registration from the roster.
		var prof model.Profile
		if err := l.store.Get(ctx, usersRoot+"/"+uid, &prof); err == nil {
			p.Profile = prof
		}
		participants = append(participants, p)
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].UserID < participants[j].UserID
	})
	return participants, nil
}

// Stats aggregates catalog and ledger totals for the admin dashboard.
type Stats struct {
	TotalEvents        int `json:"totalEvents"`
	ActiveEvents       int `json:"activeEvents"`
	TotalRegistrations int `json:"totalRegistrations"`
	ConfirmedPayments  int `json:"confirmedPayments"`
}

// EventStats scans all events and all registrations and returns the
// aggregate counters.
func (l *Ledger) EventStats(ctx context.Context) (Stats, error) {
	var stats Stats

	events, err := l.store.Scan(ctx, eventsRoot)
	if err != nil {
		return Stats{}, err
	}
	for _, doc := range events {
		var ev model.Event
		if err := json.Unmarshal(doc, &ev); err != nil {
			continue
		}
		stats.TotalEvents++
		if ev.Active {
			stats.ActiveEvents++
		}
	}

	regs, err := l.store.Scan(ctx, registrationsRoot)
	if err != nil {
		return Stats{}, err
	}
	for rel, doc := range regs {
		if _, _, ok := splitRegKey(rel); !ok {
			continue
		}
		var reg model.Registration
		if err := json.Unmarshal(doc, &reg); err != nil {
			continue
		}
		stats.TotalRegistrations++
		if reg.Status == model.StatusConfirmed {
			stats.ConfirmedPayments++
		}
	}
	return stats, nil
}

// splitRegKey splits a relative registration key "{userId}/{eventId}".
func splitRegKey(rel string) (userID, eventID string, ok bool) {
	i := strings.IndexByte(rel, '/')
	if i <= 0 || i == len(rel)-1 {
		return "", "", false
	}
	return rel[:i], rel[i+1:], true
}
