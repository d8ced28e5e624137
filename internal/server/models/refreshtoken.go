package models

import "time"

// RefreshToken is the persisted record of an issued refresh token. Token is
// the opaque value handed to the client; Revoked only ever flips from false
// to true, and ExpiresAt is fixed at creation.
type RefreshToken struct {
	ID        int64
	UserID    string
	Token     string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Expired reports whether the token's lifetime has elapsed at t.
// The boundary is exact: a token expiring at t is already expired.
func (r *RefreshToken) Expired(t time.Time) bool {
	return !r.ExpiresAt.After(t)
}
