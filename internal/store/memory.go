package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store implementation for tests.  It mirrors
// the MySQL store's behavior for absence, merge updates and prefix scans.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage

	// FailPaths lists paths whose writes fail with ErrUnavailable.  Tests
	// use it to force per-item failures inside batch operations.
	FailPaths map[string]bool
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		docs:      make(map[string]json.RawMessage),
		FailPaths: make(map[string]bool),
	}
}

// Close is a no-op for MemoryStore.
func (s *MemoryStore) Close() error { return nil }

// Get unmarshals the document at path into out.
func (s *MemoryStore) Get(ctx context.Context, path string, out any) error {
	s.mu.RLock()
	raw, ok := s.docs[path]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: get %s: decode: %v", ErrUnavailable, path, err)
	}
	return nil
}

// Set overwrites the document at path.
func (s *MemoryStore) Set(ctx context.Context, path string, value any) error {
	if err := s.failCheck(path); err != nil {
		return err
	}
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: set %s: encode: %v", ErrUnavailable, path, err)
	}
	s.mu.Lock()
	s.docs[path] = body
	s.mu.Unlock()
	return nil
}

// Update merges fields into the document at path, creating it if absent.
func (s *MemoryStore) Update(ctx context.Context, path string, fields map[string]any) error {
	if err := s.failCheck(path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := make(map[string]any)
	if raw, ok := s.docs[path]; ok {
		if err := json.Unmarshal(raw, &merged); err != nil {
			return fmt.Errorf("%w: update %s: decode: %v", ErrUnavailable, path, err)
		}
	}
	for k, v := range fields {
		merged[k] = v
	}
	body, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("%w: update %s: encode: %v", ErrUnavailable, path, err)
	}
	s.docs[path] = body
	return nil
}

// Remove deletes the document at path; absent paths are ignored.
func (s *MemoryStore) Remove(ctx context.Context, path string) error {
	if err := s.failCheck(path); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.docs, path)
	s.mu.Unlock()
	return nil
}

// GenerateID returns a fresh random child key.
func (s *MemoryStore) GenerateID(parent string) string {
	_ = parent
	return uuid.NewString()
}

// Scan returns all documents under prefix keyed by relative path.
func (s *MemoryStore) Scan(ctx context.Context, prefix string) (map[string]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]json.RawMessage)
	for path, raw := range s.docs {
		if strings.HasPrefix(path, prefix+"/") {
			cp := make(json.RawMessage, len(raw))
			copy(cp, raw)
			out[strings.TrimPrefix(path, prefix+"/")] = cp
		}
	}
	return out, nil
}

// Exists reports whether a document is present; tests use it to verify
// removal without going through Get.
func (s *MemoryStore) Exists(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[path]
	return ok
}

func (s *MemoryStore) failCheck(path string) error {
	s.mu.RLock()
	fail := s.FailPaths[path]
	s.mu.RUnlock()
	if fail {
		return fmt.Errorf("%w: %s: injected failure", ErrUnavailable, path)
	}
	return nil
}
