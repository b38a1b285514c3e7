package models

import (
	"time"
)

// Token type claim values. A token is only ever valid at the
// validation entry point matching its type.
type TokenType string

const (
	TokenTypeAccess  TokenType = "ACCESS"
	TokenTypeRefresh TokenType = "REFRESH"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by the token manager on login, register and refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Identity resolved from a validated access token plus a live user lookup.
// Request scoped: created per inbound request and discarded at request end.
type Identity struct {
	UserID  string
	Email   string
	Role    Role
	Enabled bool
}
