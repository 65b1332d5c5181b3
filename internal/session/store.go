// Package session keeps one in-memory cart per browser session.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
	"github.com/nikolayk812/pharmacy-storefront/internal/metrics"
)

type entry struct {
	mu   sync.Mutex
	cart domain.Cart

	// guarded by Store.mu
	users   int
	deleted bool
}

// Store bounds the number of live carts and forgets a cart after ttl without use.
// Calls for the same session are serialized, different sessions do not contend.
// A session in use is pinned: eviction cannot hand a concurrent call a
// different cart, and an evicted cart is put back once its last call returns.
type Store struct {
	mu      sync.Mutex
	entries *expirable.LRU[string, *entry]
	pinned  map[string]*entry

	metrics *metrics.Metrics
}

func New(maxSessions int, ttl time.Duration, m *metrics.Metrics) *Store {
	return &Store{
		entries: expirable.NewLRU[string, *entry](maxSessions, nil, ttl),
		pinned:  make(map[string]*entry),
		metrics: m,
	}
}

// Start opens a new session with an empty cart and returns its id.
func (s *Store) Start() string {
	id := uuid.NewString()
	s.release(id, s.acquire(id))
	return id
}

// Exists reports whether id still refers to a live, unexpired session.
func (s *Store) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pinned[id]; ok {
		return true
	}

	// Peek checks expiry, Contains does not
	_, ok := s.entries.Peek(id)
	return ok
}

// With runs fn on the cart of session id, creating an empty one when the
// session is unknown or expired. Each call extends the session's lifetime.
func (s *Store) With(id string, fn func(cart *domain.Cart)) {
	e := s.acquire(id)
	defer s.release(id, e)

	e.mu.Lock()
	defer e.mu.Unlock()

	fn(&e.cart)
}

// Snapshot returns a copy of the session's line items and totals.
func (s *Store) Snapshot(id string) ([]domain.LineItem, domain.CartTotals) {
	var (
		items  []domain.LineItem
		totals domain.CartTotals
	)

	s.With(id, func(cart *domain.Cart) {
		items = cart.Items()
		totals = cart.Totals()
	})

	return items, totals
}

// Clear empties the session's cart and keeps the session alive.
func (s *Store) Clear(id string) {
	s.With(id, func(cart *domain.Cart) {
		cart.Clear()
	})
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.pinned[id]; ok {
		e.deleted = true
	}

	s.entries.Remove(id)
	s.metrics.SetActiveSessions(s.entries.Len())
}

func (s *Store) Len() int {
	return s.entries.Len()
}

func (s *Store) acquire(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.pinned[id]
	if !ok {
		e, ok = s.entries.Get(id)
	}
	if !ok || e.deleted {
		e = &entry{}
	}

	// re-adding refreshes the expiry
	s.entries.Add(id, e)
	s.metrics.SetActiveSessions(s.entries.Len())

	e.users++
	s.pinned[id] = e

	return e
}

func (s *Store) release(id string, e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.users--
	if e.users > 0 {
		return
	}
	if s.pinned[id] == e {
		delete(s.pinned, id)
	}

	if e.deleted {
		return
	}

	// evicted while in use
	if _, ok := s.entries.Peek(id); !ok {
		s.entries.Add(id, e)
		s.metrics.SetActiveSessions(s.entries.Len())
	}
}
