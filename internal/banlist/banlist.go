// Package banlist owns the two ban overlays: the global ban flag on the
// user profile and per-event ban records.  The two are independent; a
// user can be banned from a single event while unrestricted elsewhere,
// and both must be consulted to fully gate access to an event.
package banlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/store"
)

const (
	usersRoot     = "users"
	eventBansRoot = "eventBans"
)

func eventBanPath(userID, eventID string) string {
	return eventBansRoot + "/" + userID + "/" + eventID
}

// Registry reads and writes ban state for users.
type Registry struct {
	store store.Store
	now   func() time.Time
}

// New returns a Registry bound to the given store.
func New(st store.Store) *Registry {
	return &Registry{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// NewWithClock returns a Registry with a custom clock, used by tests.
func NewWithClock(st store.Store, now func() time.Time) *Registry {
	r := New(st)
	if now != nil {
		r.now = now
	}
	return r
}

// BanGlobal sets or clears the global ban on a user profile.  Banning
// stamps bannedAt; unbanning clears it to null.  The profile document is
// merged, so unrelated profile fields survive.
func (r *Registry) BanGlobal(ctx context.Context, userID string, banned bool) error {
	now := r.now()
	fields := map[string]any{
		"banned":    banned,
		"updatedAt": now,
	}
	if banned {
		fields["bannedAt"] = now
	} else {
		fields["bannedAt"] = nil
	}
	return r.store.Update(ctx, usersRoot+"/"+userID, fields)
}

// IsBannedGlobally reads the user's profile and reports the global ban
// overlay.  A missing profile means not banned.
func (r *Registry) IsBannedGlobally(ctx context.Context, userID string) (model.BanState, error) {
	var prof model.Profile
	err := r.store.Get(ctx, usersRoot+"/"+userID, &prof)
	if errors.Is(err, store.ErrNotFound) {
		return model.NotBanned(), nil
	}
	if err != nil {
		return model.BanState{}, err
	}
	return prof.BanState(), nil
}

// BanFromEvent applies or lifts a per-event ban.  The representation is
// asymmetric on purpose: banning writes a record, unbanning removes it
// entirely, so absence always reads as "not banned".
func (r *Registry) BanFromEvent(ctx context.Context, userID, eventID string, banned bool) error {
	path := eventBanPath(userID, eventID)
	if !banned {
		return r.store.Remove(ctx, path)
	}
	return r.store.Set(ctx, path, &model.EventBan{
		Banned:   true,
		BannedAt: r.now(),
		EventID:  eventID,
	})
}

// IsBannedFromEvent reports the per-event ban state for the pair.
func (r *Registry) IsBannedFromEvent(ctx context.Context, userID, eventID string) (model.BanState, error) {
	var ban model.EventBan
	err := r.store.Get(ctx, eventBanPath(userID, eventID), &ban)
	if errors.Is(err, store.ErrNotFound) {
		return model.NotBanned(), nil
	}
	if err != nil {
		return model.BanState{}, err
	}
	return ban.State(), nil
}

// EventBans returns all of a user's event bans keyed by event ID.  The
// map is empty, never nil, when the user has none.
func (r *Registry) EventBans(ctx context.Context, userID string) (map[string]model.EventBan, error) {
	raw, err := r.store.Scan(ctx, eventBansRoot+"/"+userID)
	if err != nil {
		return nil, err
	}
	bans := make(map[string]model.EventBan, len(raw))
	for eventID, doc := range raw {
		var ban model.EventBan
		if err := json.Unmarshal(doc, &ban); err != nil {
			continue
		}
		bans[eventID] = ban
	}
	return bans, nil
}

// BatchFailure records one failed item of a batch operation.
type BatchFailure struct {
	UserID string `json:"userId"`
	Err    string `json:"error"`
}

// BatchResult reports the outcome of a sequential batch.  Batches never
// roll back: some users may end up banned and others not when a middle
// call fails, and callers must handle that partial state explicitly.
type BatchResult struct {
	Succeeded []string       `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

// OK reports whether every item succeeded.
func (b BatchResult) OK() bool { return len(b.Failed) == 0 }

// BanMany applies a global ban or unban to each user in turn.  Failures
// are collected per user; the batch always runs to completion.
func (r *Registry) BanMany(ctx context.Context, userIDs []string, banned bool) BatchResult {
	var res BatchResult
	for _, uid := range userIDs {
		if err := r.BanGlobal(ctx, uid, banned); err != nil {
			res.Failed = append(res.Failed, BatchFailure{UserID: uid, Err: err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, uid)
	}
	return res
}

// BanManyFromEvent applies a per-event ban or unban to each user in turn,
// with the same no-rollback semantics as BanMany.
func (r *Registry) BanManyFromEvent(ctx context.Context, userIDs []string, eventID string, banned bool) BatchResult {
	var res BatchResult
	for _, uid := range userIDs {
		if err := r.BanFromEvent(ctx, uid, eventID, banned); err != nil {
			res.Failed = append(res.Failed, BatchFailure{UserID: uid, Err: err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, uid)
	}
	return res
}

// SelectionActions reports which bulk actions a homogeneous-selection
// policy allows: banning is offered only when no selected user is already
// banned, unbanning only when no selected user is unbanned.  Mixed
// selections allow neither.
type SelectionActions struct {
	CanBan   bool `json:"canBan"`
	CanUnban bool `json:"canUnban"`
	Mixed    bool `json:"mixed"`
}

// GlobalSelectionActions computes the bulk global ban policy for a
// selection of users.
func (r *Registry) GlobalSelectionActions(ctx context.Context, userIDs []string) (SelectionActions, error) {
	if len(userIDs) == 0 {
		return SelectionActions{}, nil
	}
	var banned, unbanned bool
	for _, uid := range userIDs {
		state, err := r.IsBannedGlobally(ctx, uid)
		if err != nil {
			return SelectionActions{}, fmt.Errorf("banlist: selection state for %s: %w", uid, err)
		}
		if state.Banned {
			banned = true
		} else {
			unbanned = true
		}
	}
	return selectionActions(banned, unbanned), nil
}

// EventSelectionActions computes the bulk event ban policy for a
// selection of users against one target event.
func (r *Registry) EventSelectionActions(ctx context.Context, userIDs []string, eventID string) (SelectionActions, error) {
	if len(userIDs) == 0 {
		return SelectionActions{}, nil
	}
	var banned, unbanned bool
	for _, uid := range userIDs {
		state, err := r.IsBannedFromEvent(ctx, uid, eventID)
		if err != nil {
			return SelectionActions{}, fmt.Errorf("banlist: event selection state for %s: %w", uid, err)
		}
		if state.Banned {
			banned = true
		} else {
			unbanned = true
		}
	}
	return selectionActions(banned, unbanned), nil
}

func selectionActions(banned, unbanned bool) SelectionActions {
	return SelectionActions{
		CanBan:   unbanned && !banned,
		CanUnban: banned && !unbanned,
		Mixed:    banned && unbanned,
	}
}
