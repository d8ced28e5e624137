// Package refreshtokens declares the repository contract for the persisted
// refresh token records backing the rotation scheme.
package refreshtokens

import (
	"context"
	"time"

	"github.com/cheridanh/infradev/internal/server/models"
)

// Repository defines the store operations for refresh tokens. Revocation is
// monotonic: nothing here ever flips revoked back to false.
type Repository interface {
	// Create persists a new token record and fills in its ID and creation
	// timestamp. The token value carries a unique constraint.
	Create(ctx context.Context, token *models.RefreshToken) error

	// FindActive looks a token up by value, filtered to revoked = false.
	// Returns common.ErrorNotFound both when the value never existed and
	// when it is revoked; callers must not distinguish the two.
	FindActive(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke sets revoked = true on a single token value.
	Revoke(ctx context.Context, token string) error

	// RevokeAllByUser sets revoked = true on every active token of a user
	// in one statement.
	RevokeAllByUser(ctx context.Context, userID string) error

	// DeleteExpiredAndRevoked hard-deletes every record that is revoked or
	// expired at the cutoff, returning the number removed. Active unexpired
	// records are never touched.
	DeleteExpiredAndRevoked(ctx context.Context, cutoff time.Time) (int64, error)
}
