package workflow

import "sync"

// Guard is the in-flight page set shared by every trigger and the full
// refresh. A page is acquired before any work starts and released in a
// deferred cleanup, so a page mid-cycle under one trigger is skipped by the
// others.
type Guard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewGuard returns an empty guard.
func NewGuard() *Guard {
	return &Guard{inFlight: make(map[string]struct{})}
}

// Acquire marks a page in-flight. It reports false when the page is already
// being processed.
func (g *Guard) Acquire(pageID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[pageID]; busy {
		return false
	}
	g.inFlight[pageID] = struct{}{}
	return true
}

// Release removes a page from the in-flight set. Releasing an absent page is
// a no-op.
func (g *Guard) Release(pageID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, pageID)
}

// Len reports how many pages are currently in flight.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inFlight)
}
