package entity

import "time"

// GuestScope is the identity discriminator used when nobody is logged in.
const GuestScope = "guest"

// SessionStatus is the resolution state of a client session.
type SessionStatus string

const (
	// SessionUnresolved means resolution has not been attempted yet.
	SessionUnresolved SessionStatus = "unresolved"
	// SessionResolving means a refresh exchange is in flight.
	SessionResolving SessionStatus = "resolving"
	// SessionAuthenticated means a user and an access token are held.
	SessionAuthenticated SessionStatus = "authenticated"
	// SessionAnonymous means resolution finished without an identity.
	SessionAnonymous SessionStatus = "anonymous"
)

// IsResolved reports whether the status is terminal.
func (s SessionStatus) IsResolved() bool {
	return s == SessionAuthenticated || s == SessionAnonymous
}

// Session is a point-in-time copy of the session store.
type Session struct {
	Status      SessionStatus `json:"status"`
	User        *User         `json:"user,omitempty"`
	AccessToken string        `json:"-"`
	ExpiresAt   time.Time     `json:"expiresAt,omitzero"`
	Cart        CartView      `json:"cart"`
}

// IsAuthenticated reports whether the session carries an identity.
func (s Session) IsAuthenticated() bool {
	return s.Status == SessionAuthenticated && s.User != nil && s.AccessToken != ""
}

// Scope returns the cache partition of the caller: the user id or GuestScope.
func (s Session) Scope() string {
	if s.IsAuthenticated() {
		return s.User.ID
	}

	return GuestScope
}

// AuthResult is what login, register and refresh hand back.
type AuthResult struct {
	User        *User  `json:"user"`
	AccessToken string `json:"accessToken"`
}
