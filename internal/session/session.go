// Package session keeps one cart per visitor for the lifetime of their
// browsing session.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/food-storefront/internal/cart"
)

var ErrNotFound = errors.New("session: not found")

// Session owns a cart.Store. The store has no locking of its own, so every
// access goes through Do.
type Session struct {
	ID string

	mu   sync.Mutex
	cart *cart.Store
	// lastSeen is unix nanoseconds. It is not guarded by mu.
	lastSeen atomic.Int64
}

func (s *Session) touch(t time.Time) { s.lastSeen.Store(t.UnixNano()) }

func (s *Session) idleSince(cutoff time.Time) bool {
	return s.lastSeen.Load() < cutoff.UnixNano()
}

// Do runs fn with exclusive access to the session's cart.
func (s *Session) Do(fn func(*cart.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.cart)
}

type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	idle     time.Duration
	now      func() time.Time
}

// NewRegistry returns a registry that forgets sessions unused for idle.
// A zero idle disables sweeping.
func NewRegistry(idle time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		idle:     idle,
		now:      time.Now,
	}
}

// Create starts a session with an empty cart.
func (r *Registry) Create() *Session {
	s := &Session{ID: uuid.NewString(), cart: cart.NewStore()}
	s.touch(r.now())

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the live session for id and marks it as seen.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	s.touch(r.now())
	return s, nil
}

// Acquire returns the session for id, creating a fresh one when id is
// empty or unknown. created reports whether a new session was issued.
func (r *Registry) Acquire(id string) (s *Session, created bool) {
	if id != "" {
		if s, err := r.Get(id); err == nil {
			return s, false
		}
	}
	return r.Create(), true
}

// Sweep drops sessions idle for longer than the configured timeout and
// returns how many were removed.
func (r *Registry) Sweep() int {
	if r.idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idle)

	r.mu.RLock()
	var stale []*Session
	for _, s := range r.sessions {
		if s.idleSince(cutoff) {
			stale = append(stale, s)
		}
	}
	r.mu.RUnlock()
	if len(stale) == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for _, s := range stale {
		// Get may have refreshed it since the scan.
		if r.sessions[s.ID] == s && s.idleSince(cutoff) {
			delete(r.sessions, s.ID)
			removed++
		}
	}
	return removed
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.InfoContext(ctx, "swept idle sessions", "removed", n, "live", r.Len())
			}
		}
	}
}
