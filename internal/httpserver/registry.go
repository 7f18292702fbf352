package httpserver

import (
	"context"
	"sync"
	"time"

	"github.com/akosarev/storefront/internal/api"
	"github.com/akosarev/storefront/internal/cart"
)

const (
	// sessions idle past this are dropped; the next request rebuilds the
	// store from a fresh server fetch, so nothing durable is lost
	sessionTTL = 30 * time.Minute

	sweepInterval = 5 * time.Minute
)

// StoreFactory builds a cart store for one user; the token source follows
// the session credential as it refreshes between requests.
type StoreFactory func(userID string, tokens api.TokenSource) *cart.Store

type session struct {
	store    *cart.Store
	lastSeen time.Time // guarded by Registry.mu

	mu    sync.Mutex
	token string
}

func (s *session) setToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *session) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// Registry keeps one cart store per authenticated user, evicting sessions
// that sit idle so the map stays bounded by active traffic.
type Registry struct {
	factory StoreFactory

	mu        sync.Mutex
	sessions  map[string]*session
	lastSweep time.Time
}

func NewRegistry(factory StoreFactory) *Registry {
	return &Registry{
		factory:  factory,
		sessions: make(map[string]*session),
	}
}

// For returns the user's store, creating it on first use, and refreshes the
// credential forwarded to the upstream API.
func (r *Registry) For(userID, token string) *cart.Store {
	now := time.Now()

	r.mu.Lock()
	if now.Sub(r.lastSweep) >= sweepInterval {
		r.evictIdleLocked(now)
		r.lastSweep = now
	}
	s, ok := r.sessions[userID]
	if !ok {
		s = &session{}
		s.store = r.factory(userID, s.Token)
		r.sessions[userID] = s
	}
	s.lastSeen = now
	r.mu.Unlock()

	s.setToken(token)
	return s.store
}

func (r *Registry) evictIdleLocked(now time.Time) {
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) >= sessionTTL {
			delete(r.sessions, id)
		}
	}
}
