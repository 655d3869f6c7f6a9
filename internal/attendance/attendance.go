// Package attendance owns the attended/not-attended state on
// registrations: single and bulk marking plus per-event attendance
// statistics.  Marking never creates a registration; only pairs admitted
// by the ledger can be marked.
package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/store"
)

// ErrNotRegistered is returned when marking attendance for a pair that
// holds no registration.
var ErrNotRegistered = errors.New("attendance: user is not registered for event")

const registrationsRoot = "registrations"

func regPath(userID, eventID string) string {
	return registrationsRoot + "/" + userID + "/" + eventID
}

// Tracker reads and writes attendance state on registrations.
type Tracker struct {
	store store.Store
	now   func() time.Time
}

// New returns a Tracker bound to the given store.
func New(st store.Store) *Tracker {
	return &Tracker{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// NewWithClock returns a Tracker with a custom clock, used by tests.
func NewWithClock(st store.Store, now func() time.Time) *Tracker {
	t := New(st)
	if now != nil {
		t.now = now
	}
	return t
}

// Mark sets the attended flag on the pair's registration.  Marking
// attended stamps attendedAt; unmarking clears it to null.  A pair with
// no registration fails with ErrNotRegistered instead of silently
// creating a record.
func (t *Tracker) Mark(ctx context.Context, userID, eventID string, attended bool) error {
	path := regPath(userID, eventID)
	var reg model.Registration
	err := t.store.Get(ctx, path, &reg)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotRegistered
	}
	if err != nil {
		return err
	}
	now := t.now()
	fields := map[string]any{
		"attended":  attended,
		"updatedAt": now,
	}
	if attended {
		fields["attendedAt"] = now
	} else {
		fields["attendedAt"] = nil
	}
	return t.store.Update(ctx, path, fields)
}

// Mark is one item of a bulk attendance request.
type Mark struct {
	UserID   string `json:"userId"`
	EventID  string `json:"eventId"`
	Attended bool   `json:"attended"`
}

// BatchFailure records one failed item of a bulk mark.
type BatchFailure struct {
	UserID  string `json:"userId"`
	EventID string `json:"eventId"`
	Err     string `json:"error"`
}

// BatchResult reports a bulk mark outcome.  The batch never aborts on a
// failed item; callers must handle partial success.
type BatchResult struct {
	Succeeded []Mark         `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

// OK reports whether every item succeeded.
func (b BatchResult) OK() bool { return len(b.Failed) == 0 }

// MarkMany applies each mark in order, collecting per-item failures.
func (t *Tracker) MarkMany(ctx context.Context, marks []Mark) BatchResult {
	var res BatchResult
	for _, m := range marks {
		if err := t.Mark(ctx, m.UserID, m.EventID, m.Attended); err != nil {
			res.Failed = append(res.Failed, BatchFailure{
				UserID:  m.UserID,
				EventID: m.EventID,
				Err:     err.Error(),
			})
			continue
		}
		res.Succeeded = append(res.Succeeded, m)
	}
	return res
}

// Attendee is one registration row of an event attendance sheet.
type Attendee struct {
	UserID       string             `json:"userId"`
	Registration model.Registration `json:"registration"`
}

// Attendees returns every registration for the event, ordered by user ID.
func (t *Tracker) Attendees(ctx context.Context, eventID string) ([]Attendee, error) {
	raw, err := t.store.Scan(ctx, registrationsRoot)
	if err != nil {
		return nil, err
	}
	attendees := make([]Attendee, 0)
	for rel, doc := range raw {
		i := strings.IndexByte(rel, '/')
		if i <= 0 || rel[i+1:] != eventID {
			continue
		}
		var reg model.Registration
		if err := json.Unmarshal(doc, &reg); err != nil {
			continue
		}
		attendees = append(attendees, Attendee{UserID: rel[:i], Registration: reg})
	}
	sort.Slice(attendees, func(i, j int) bool {
		return attendees[i].UserID < attendees[j].UserID
	})
	return attendees, nil
}

// Stats summarises attendance for one event.  AttendanceRate is a whole
// percent, rounded half away from zero.
type Stats struct {
	TotalRegistered int `json:"totalRegistered"`
	Attended        int `json:"attended"`
	NotAttended     int `json:"notAttended"`
	AttendanceRate  int `json:"attendanceRate"`
}

// EventStats computes attendance statistics for the event.
func (t *Tracker) EventStats(ctx context.Context, eventID string) (Stats, error) {
	attendees, err := t.Attendees(ctx, eventID)
	if err != nil {
		return Stats{}, err
	}
	var stats Stats
	stats.TotalRegistered = len(attendees)
	for _, a := range attendees {
		if a.Registration.Attended {
			stats.Attended++
		}
	}
	stats.NotAttended = stats.TotalRegistered - stats.Attended
	if stats.TotalRegistered > 0 {
		stats.AttendanceRate = int(math.Round(float64(stats.Attended) / float64(stats.TotalRegistered) * 100))
	}
	return stats, nil
}

// BanChecker is the slice of the ban registry the eligibility filter
// needs.
type BanChecker interface {
	IsBannedFromEvent(ctx context.Context, userID, eventID string) (model.BanState, error)
}

// FilterEligible drops users holding an event ban for the target event
// from a bulk-attendance selection.  A ban lookup failure refuses the
// whole batch; bulk marking must never proceed past a user whose ban
// state is unknown.
func (t *Tracker) FilterEligible(ctx context.Context, bans BanChecker, userIDs []string, eventID string) ([]string, error) {
	eligible := make([]string, 0, len(userIDs))
	for _, uid := range userIDs {
		state, err := bans.IsBannedFromEvent(ctx, uid, eventID)
		if err != nil {
			return nil, err
		}
		if !state.Banned {
			eligible = append(eligible, uid)
		}
	}
	return eligible, nil
}
