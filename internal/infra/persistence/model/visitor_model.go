package model

import (
	"time"

	"github.com/google/uuid"
)

// VisitorSessionModel is the GORM-specific struct for the 'visitor_sessions' table.
// Token and cookies are stored sealed; the table never holds plaintext credentials.
type VisitorSessionModel struct {
	VisitorID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	SealedToken   []byte    `gorm:"type:bytea"`
	SealedCookies []byte    `gorm:"type:bytea"`
	CreatedAt     time.Time
	UpdatedAt     time.Time `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (VisitorSessionModel) TableName() string {
	return "visitor_sessions"
}
