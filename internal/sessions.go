package internal

import (
	"context"
	"sync"
	"time"

	"laptop-request-catalog/internal/app"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// SessionRegistry maps browser session ids to their controllers. Sessions
// that have not been seen for the idle timeout are evicted by Sweep.
type SessionRegistry struct {
	clock   clockwork.Clock
	idle    time.Duration
	factory func() *app.Controller

	mu      sync.Mutex
	entries map[uuid.UUID]*sessionEntry
}

type sessionEntry struct {
	ctrl     *app.Controller
	lastSeen time.Time
}

// NewSessionRegistry creates a registry that builds controllers with
// factory.
func NewSessionRegistry(clock clockwork.Clock, idle time.Duration, factory func() *app.Controller) *SessionRegistry {
	return &SessionRegistry{
		clock:   clock,
		idle:    idle,
		factory: factory,
		entries: make(map[uuid.UUID]*sessionEntry),
	}
}

// Get returns the controller for id, creating it on first use.
func (r *SessionRegistry) Get(id uuid.UUID) *app.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		e = &sessionEntry{ctrl: r.factory()}
		r.entries[id] = e
	}
	e.lastSeen = r.clock.Now()
	return e.ctrl
}

// Lookup returns the controller for id without creating or touching it.
func (r *SessionRegistry) Lookup(id uuid.UUID) (*app.Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.ctrl, true
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts idle sessions and returns how many were removed.
func (r *SessionRegistry) Sweep() int {
	cutoff := r.clock.Now().Add(-r.idle)

	r.mu.Lock()
	var evicted []*app.Controller
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			evicted = append(evicted, e.ctrl)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, c := range evicted {
		c.Shutdown()
	}
	return len(evicted)
}

// Run sweeps every half idle timeout until ctx is done.
func (r *SessionRegistry) Run(ctx context.Context) {
	ticker := r.clock.NewTicker(r.idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.Sweep()
		}
	}
}

// Close shuts down every controller and empties the registry.
func (r *SessionRegistry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[uuid.UUID]*sessionEntry)
	r.mu.Unlock()

	for _, e := range entries {
		e.ctrl.Shutdown()
	}
}
