package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cheridanh/infradev/internal/common"
	"github.com/cheridanh/infradev/internal/dbx"
	"github.com/cheridanh/infradev/internal/logging"
	"github.com/cheridanh/infradev/internal/server/config"
	"github.com/cheridanh/infradev/internal/server/models"
	"github.com/cheridanh/infradev/internal/server/repositories/repomanager"
)

// tokenValueBytes is the entropy of the opaque token value; the stored value
// is its 64-character hex encoding.
const tokenValueBytes = 32

// RefreshTokenService owns the refresh token lifecycle: issuance,
// validation with lazy expiry revocation, rotation-on-use, bulk revocation,
// and the periodic sweep of dead records.
//
// Per-token state machine: Active -> Revoked, either directly (rotation,
// revoke-all) or through expiry detected on validation. Revoked is
// absorbing; no operation un-revokes.
type RefreshTokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validity    time.Duration
	logger      logging.Logger
}

func NewRefreshTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *RefreshTokenService {
	return &RefreshTokenService{
		db:          db,
		repomanager: m,
		validity:    cfg.RefreshTokenValidityDuration,
		logger:      logger.With("module", "refresh_token_service"),
	}
}

// Issue generates a fresh opaque value and persists a new active record with
// expiry = now + the refresh validity. It runs against the given handle so
// callers can fold issuance into a larger transaction.
func (s *RefreshTokenService) Issue(ctx context.Context, db dbx.DBTX, userID string) (*models.RefreshToken, error) {
	value, err := common.MakeRandHexString(tokenValueBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token value: %w", err)
	}

	token := &models.RefreshToken{
		UserID:    userID,
		Token:     value,
		ExpiresAt: time.Now().Add(s.validity),
	}
	if err := s.repomanager.RefreshTokens(db).Create(ctx, token); err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "refresh token issued", "user_id", userID)
	return token, nil
}

// Validate looks up an active record for the presented value. Unknown and
// revoked values both yield ErrRefreshTokenInvalid. A record found expired
// is revoked on the spot before ErrRefreshTokenExpired is returned, so an
// expired-but-unswept token dies on its first use attempt.
func (s *RefreshTokenService) Validate(ctx context.Context, value string) (*models.RefreshToken, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.FindActive(ctx, value)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "refresh token not found or already revoked")
			return nil, common.ErrRefreshTokenInvalid
		}
		return nil, err
	}

	if token.Expired(time.Now()) {
		if err := repo.Revoke(ctx, token.Token); err != nil {
			return nil, err
		}
		token.Revoked = true
		s.logger.Warn(ctx, "refresh token expired", "user_id", token.UserID)
		return nil, common.ErrRefreshTokenExpired
	}

	return token, nil
}

// Rotate revokes old and issues a replacement for the same owner in a single
// transaction, so no concurrent reader ever observes the revoke committed
// without its successor. The old value is dead once Rotate returns,
// whatever the caller does next.
func (s *RefreshTokenService) Rotate(ctx context.Context, old *models.RefreshToken) (*models.RefreshToken, error) {
	var rotated *models.RefreshToken

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Revoke(ctx, old.Token); err != nil {
			return err
		}
		issued, err := s.Issue(ctx, tx, old.UserID)
		if err != nil {
			return err
		}
		rotated = issued
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "refresh token rotated", "user_id", old.UserID)
	return rotated, nil
}

// RevokeAll revokes every active token of the user in one statement. Runs
// against the given handle for the same reason as Issue.
func (s *RefreshTokenService) RevokeAll(ctx context.Context, db dbx.DBTX, userID string) error {
	if err := s.repomanager.RefreshTokens(db).RevokeAllByUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Debug(ctx, "all refresh tokens revoked", "user_id", userID)
	return nil
}

// Sweep hard-deletes every revoked or expired record and returns the count
// removed. The predicate alone keeps it safe to run concurrently with
// issue/validate/rotate: a record cannot become active again once it is
// sweep-eligible.
func (s *RefreshTokenService) Sweep(ctx context.Context) (int64, error) {
	s.logger.Info(ctx, "sweeping expired and revoked refresh tokens")

	count, err := s.repomanager.RefreshTokens(s.db).DeleteExpiredAndRevoked(ctx, time.Now())
	if err != nil {
		s.logger.Error(ctx, "refresh token sweep failed", "error", err.Error())
		return 0, err
	}

	s.logger.Info(ctx, "refresh token sweep finished", "deleted", count)
	return count, nil
}
