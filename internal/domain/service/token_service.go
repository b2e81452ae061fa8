package service

import (
	"time"
)

// TokenClaims is the part of an access token the client cares about.
type TokenClaims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now. Tokens
// without an exp claim never expire on the client side.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// TokenInspector reads access tokens issued by the backend. The client does
// not hold the signing key, so signatures are left to the backend to verify.
type TokenInspector interface {
	Inspect(token string) (*TokenClaims, error)
}

// CredentialSealer encrypts credentials before they are persisted.
type CredentialSealer interface {
	Seal(plain []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}
