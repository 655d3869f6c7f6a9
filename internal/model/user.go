package model

import (
	"strings"
	"time"
)

// Roles recognised by the role middleware.  The role lives on the user
// profile document; promotion and demotion are plain profile updates.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Profile is the user profile document stored at users/{userId}.  The
// account itself is owned by the external identity provider; this record
// carries the application-level fields, including the global ban overlay.
//
// Fields:
//  Name      – display name.
//  Email     – contact email.
//  College   – college/organisation; "Not specified" acts as unset.
//  Phone     – phone number; "Not specified" acts as unset.
//  Role      – "admin" or "user".
//  Banned    – global ban flag; blocks all account functionality.
//  BannedAt  – when the global ban was applied; nil when not banned.
//  CreatedAt – profile creation timestamp.
//  UpdatedAt – last update timestamp.
type Profile struct {
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	College   string     `json:"college"`
	Phone     string     `json:"phone"`
	Role      string     `json:"role"`
	Banned    bool       `json:"banned"`
	BannedAt  *time.Time `json:"bannedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// unset placeholder written by the profile form when a field is skipped.
const notSpecified = "Not specified"

// Complete reports whether the profile has the fields required before the
// user may register for events: a name, a college and a phone number,
// none of them blank or the "Not specified" placeholder.
func (p *Profile) Complete() bool {
	return fieldSet(p.Name) && fieldSet(p.College) && fieldSet(p.Phone)
}

func fieldSet(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != notSpecified
}

// BanState returns the profile's global ban overlay as a BanState.
func (p *Profile) BanState() BanState {
	if !p.Banned {
		return NotBanned()
	}
	return BanState{Banned: true, BannedAt: p.BannedAt}
}
