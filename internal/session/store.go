// Package session holds the single record of who the caller is. Caches read
// it to build keys and gates; only auth flows write identity into it.
package session

import (
	"sync"
	"time"

	"storefront/internal/domain/entity"
)

// Listener is called after every change with a copy of the new session.
type Listener func(entity.Session)

type Store struct {
	mu        sync.RWMutex
	session   entity.Session
	listeners []Listener
}

func NewStore() *Store {
	return &Store{session: entity.Session{Status: entity.SessionUnresolved}}
}

// Subscribe registers l and returns a function removing it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, l)
	idx := len(s.listeners) - 1

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners[idx] = nil
	}
}

func (s *Store) update(fn func(*entity.Session)) {
	s.mu.Lock()
	fn(&s.session)
	snapshot := s.copyLocked()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		if l != nil {
			l(snapshot)
		}
	}
}

func (s *Store) copyLocked() entity.Session {
	c := s.session
	if s.session.User != nil {
		u := *s.session.User
		c.User = &u
	}
	c.Cart.Items = append([]entity.CartItem(nil), s.session.Cart.Items...)

	return c
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() entity.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.copyLocked()
}

func (s *Store) Status() entity.SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session.Status
}

// Resolved reports whether session resolution has finished either way.
func (s *Store) Resolved() bool {
	return s.Status().IsResolved()
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session.IsAuthenticated()
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session.AccessToken
}

func (s *Store) User() *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session.User == nil {
		return nil
	}
	u := *s.session.User

	return &u
}

// Scope is the cache partition of the current caller: the user id or the guest scope.
func (s *Store) Scope() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session.Scope()
}

// BeginResolve moves an unresolved session to resolving. It returns false when
// a token is already held or resolution already finished.
func (s *Store) BeginResolve() bool {
	began := false
	s.update(func(sess *entity.Session) {
		if sess.AccessToken != "" || sess.Status != entity.SessionUnresolved {
			return
		}
		sess.Status = entity.SessionResolving
		began = true
	})

	return began
}

// SetAuthenticated stores the identity and token.
func (s *Store) SetAuthenticated(user entity.User, accessToken string, expiresAt time.Time) {
	s.update(func(sess *entity.Session) {
		sess.Status = entity.SessionAuthenticated
		sess.User = &user
		sess.AccessToken = accessToken
		sess.ExpiresAt = expiresAt
	})
}

// Clear drops identity, token and cart view, leaving a resolved anonymous session.
func (s *Store) Clear() {
	s.update(func(sess *entity.Session) {
		*sess = entity.Session{Status: entity.SessionAnonymous}
	})
}

// SetCart replaces the denormalized cart view.
func (s *Store) SetCart(cart entity.Cart) {
	view := cart.View()
	s.update(func(sess *entity.Session) {
		sess.Cart = view
	})
}

// ResetCart empties the cart view.
func (s *Store) ResetCart() {
	s.update(func(sess *entity.Session) {
		sess.Cart = entity.CartView{Items: []entity.CartItem{}}
	})
}
