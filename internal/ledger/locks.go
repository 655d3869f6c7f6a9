package ledger

import "sync"

// eventLocks hands out one mutex per event ID so that admission for an
// event runs single-file.  Locks are created on demand and kept for the
// process lifetime; the catalog is small enough that reclaiming them is
// not worth the bookkeeping.
type eventLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the mutex for the event and returns its unlock function.
func (e *eventLocks) lock(eventID string) func() {
	e.mu.Lock()
	if e.locks == nil {
		e.locks = make(map[string]*sync.Mutex)
	}
	m, ok := e.locks[eventID]
	if !ok {
		m = &sync.Mutex{}
		e.locks[eventID] = m
	}
	e.mu.Unlock()

	m.Lock()
	return m.Unlock
}
