// Package users declares the repository contract for account records.
package users

import (
	"context"
	"time"

	"github.com/cheridanh/infradev/internal/server/models"
)

// Repository defines the persistence operations the auth flows need from
// the user store.
type Repository interface {
	// Create inserts a new user. A duplicate email yields
	// common.ErrEmailExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByEmail returns the user with the given email or
	// common.ErrorNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID returns the user with the given ID or common.ErrorNotFound.
	FindByID(ctx context.Context, id string) (*models.User, error)

	// ExistsByEmail reports whether an account with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdateLastLogin records a successful login timestamp.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
