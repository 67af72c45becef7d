package models

import (
	"time"
)

// Session represents a user's login on this machine.
// The bearer token is issued by the identity provider; the user fields are read from its claims.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// IsExpired returns true if the session has expired.
// Sessions without an expiry never expire locally; the server decides.
func (s *Session) IsExpired() bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(s.ExpiresAt)
}
