package pasetotoken

import (
	"time"

	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Subject identifies who a token is issued to.
type Subject struct {
	ID        uuid.UUID
	Role      string
	SessionID uuid.UUID
}

// Claims is the app-facing token payload.
type Claims struct {
	Type      TokenType
	SubjectID uuid.UUID
	Role      string
	SessionID uuid.UUID

	Issuer    string
	Audience  string
	TokenID   string
	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
}

func (c *Claims) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
