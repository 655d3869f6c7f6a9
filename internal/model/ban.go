package model

import "time"

// BanState describes whether a user is banned and, when banned, since when.
// The zero value means not banned; use NewBan to build the banned state so
// that a banned state always carries its timestamp.
type BanState struct {
	Banned   bool       `json:"banned"`
	BannedAt *time.Time `json:"bannedAt,omitempty"`
}

// NewBan returns a banned state effective at the given time.
func NewBan(at time.Time) BanState {
	return BanState{Banned: true, BannedAt: &at}
}

// NotBanned is the absent/cleared ban state.
func NotBanned() BanState { return BanState{} }

// EventBan is a per-event ban record stored at eventBans/{userId}/{eventId}.
// The record only exists while the ban is in force: unbanning removes the
// document entirely, so absence always means "not banned".  EventBan and
// the global ban on the user profile are independent overlays; both must
// be consulted to fully gate a user's access to an event.
//
// Fields:
//  Banned   – always true for a stored record.
//  BannedAt – when the ban was applied.
//  EventID  – event the ban applies to.
type EventBan struct {
	Banned   bool      `json:"banned"`
	BannedAt time.Time `json:"bannedAt"`
	EventID  string    `json:"eventId"`
}

// State converts the stored record into a BanState.
func (b EventBan) State() BanState {
	if !b.Banned {
		return NotBanned()
	}
	at := b.BannedAt
	return BanState{Banned: true, BannedAt: &at}
}
