package api

import (
	"sync"
	"time"

	"github.com/birdquiz/birdquiz/internal/session"
)

// entry is one live session. mu serializes every operation on sess, which
// has a single-writer contract.
type entry struct {
	mu       sync.Mutex
	sess     *session.Session
	owner    string
	lastSeen time.Time
}

// registry holds the in-memory sessions by id.
type registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func newRegistry() *registry {
	return &registry{entries: make(map[string]*entry)}
}

func (r *registry) put(e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.sess.ID()] = e
}

// get returns the session if it exists and belongs to owner. Anonymous
// sessions have an empty owner and are reachable by id alone.
func (r *registry) get(id, owner string, now time.Time) (*entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.owner != owner {
		return nil, false
	}
	e.lastSeen = now
	return e, true
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()

	if ok {
		e.mu.Lock()
		e.sess.Close()
		e.mu.Unlock()
	}
}

// sweep closes and drops sessions idle for longer than ttl.
func (r *registry) sweep(now time.Time, ttl time.Duration) int {
	r.mu.Lock()
	var expired []*entry
	for id, e := range r.entries {
		if now.Sub(e.lastSeen) > ttl {
			expired = append(expired, e)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, e := range expired {
		e.mu.Lock()
		e.sess.Close()
		e.mu.Unlock()
	}
	return len(expired)
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
