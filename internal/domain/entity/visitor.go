package entity

import (
	"time"

	"github.com/google/uuid"
)

// VisitorCredentials is what survives a restart for one browser visitor:
// the backend cookies (refresh credential, guest cart id) and the last access
// token used as fallback authorization. Both are sealed at rest.
type VisitorCredentials struct {
	VisitorID     uuid.UUID
	SealedToken   []byte
	SealedCookies []byte
	UpdatedAt     time.Time
}
