// Package profile manages user profile documents at users/{userId}.
// Account identity belongs to the external identity provider; this layer
// only owns the application-level fields (contact details, role, and the
// global ban overlay written by the ban registry).
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/store"
)

// ErrNotFound is returned when no profile exists for the user.
var ErrNotFound = errors.New("profile: not found")

// ErrReservedField is returned when an update tries to write a field
// owned by the ban registry.
var ErrReservedField = errors.New("profile: field managed by the ban registry")

const usersRoot = "users"

func path(userID string) string { return usersRoot + "/" + userID }

// Service reads and writes user profiles.
type Service struct {
	store store.Store
	now   func() time.Time
}

// New returns a Service bound to the given store.
func New(st store.Store) *Service {
	return &Service{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// NewWithClock returns a Service with a custom clock, used by tests.
func NewWithClock(st store.Store, now func() time.Time) *Service {
	s := New(st)
	if now != nil {
		s.now = now
	}
	return s
}

// Save writes a full profile document, stamping both timestamps.  New
// profiles default to the regular user role.
func (s *Service) Save(ctx context.Context, userID string, p model.Profile) error {
	now := s.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Role == "" {
		p.Role = model.RoleUser
	}
	return s.store.Set(ctx, path(userID), &p)
}

// Get returns the user's profile.
func (s *Service) Get(ctx context.Context, userID string) (model.Profile, error) {
	var p model.Profile
	err := s.store.Get(ctx, path(userID), &p)
	if errors.Is(err, store.ErrNotFound) {
		return model.Profile{}, ErrNotFound
	}
	if err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// Update merges fields into the profile and stamps updatedAt.  The ban
// fields are reserved for the ban registry and rejected here.
func (s *Service) Update(ctx context.Context, userID string, fields map[string]any) error {
	if _, ok := fields["banned"]; ok {
		return ErrReservedField
	}
	delete(fields, "bannedAt")
	delete(fields, "createdAt")
	fields["updatedAt"] = s.now()
	return s.store.Update(ctx, path(userID), fields)
}

// SetRole promotes or demotes a user.
func (s *Service) SetRole(ctx context.Context, userID, role string) error {
	if role != model.RoleAdmin && role != model.RoleUser {
		return fmt.Errorf("profile: unknown role %q", role)
	}
	return s.Update(ctx, userID, map[string]any{"role": role})
}

// IsAdmin reports whether the user's profile carries the admin role.
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	p, err := s.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.Role == model.RoleAdmin, nil
}
