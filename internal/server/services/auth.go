// Package services contains the server-side business logic: the refresh
// token lifecycle and the authentication orchestrator composing tokens with
// user lookup and credential checks.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cheridanh/infradev/internal/common"
	"github.com/cheridanh/infradev/internal/dbx"
	"github.com/cheridanh/infradev/internal/logging"
	"github.com/cheridanh/infradev/internal/server/auth"
	"github.com/cheridanh/infradev/internal/server/models"
	"github.com/cheridanh/infradev/internal/server/repositories/repomanager"
)

// bcryptCost used for password hashing.
const bcryptCost = 12

// RegisterInput carries the already-validated registration fields.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// TokenPair bundles a short-lived access token and a long-lived refresh
// token value, plus the account the pair belongs to.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

// AuthService implements the register/login/refresh/logout use cases. It is
// the only component aware of both token subsystems and user identity.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	refresh     *RefreshTokenService
	logger      logging.Logger
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec, refresh *RefreshTokenService, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		codec:       codec,
		refresh:     refresh,
		logger:      logger.With("module", "auth_service"),
	}
}

// Register creates an account with a hashed password and the default role,
// then returns a first token pair. User creation and the initial refresh
// token issuance share one transaction: both land or neither does.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*TokenPair, error) {
	s.logger.Info(ctx, "registration attempt")

	exists, err := s.repomanager.Users(s.db).ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}

	var refreshToken *models.RefreshToken
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		issued, err := s.refresh.Issue(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		refreshToken = issued
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)

	accessToken, err := s.codec.Mint(user.Email, user.Roles())
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken.Token, User: user}, nil
}

// Login verifies credentials and mints a fresh pair. Every successful login
// revokes all previously issued refresh tokens of the account, so only the
// newest session lineage stays redeemable. Unknown email and wrong password
// both surface as ErrInvalidCredentials; the distinction exists only in
// logs.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	s.logger.Info(ctx, "login attempt")

	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "login failed: unknown email")
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn(ctx, "login failed: wrong password", "user_id", user.ID)
		return nil, common.ErrInvalidCredentials
	}

	now := time.Now()
	var refreshToken *models.RefreshToken
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdateLastLogin(ctx, user.ID, now); err != nil {
			return err
		}
		if err := s.refresh.RevokeAll(ctx, tx, user.ID); err != nil {
			return err
		}
		issued, err := s.refresh.Issue(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		refreshToken = issued
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.LastLogin = &now

	accessToken, err := s.codec.Mint(user.Email, user.Roles())
	if err != nil {
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "login succeeded", "user_id", user.ID)

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken.Token, User: user}, nil
}

// Refresh redeems a refresh token for a new pair. The presented value is
// dead after this call whatever the outcome of the mint step: rotation
// commits first. Validation failures propagate as ErrRefreshTokenInvalid /
// ErrRefreshTokenExpired.
func (s *AuthService) Refresh(ctx context.Context, value string) (*TokenPair, error) {
	s.logger.Debug(ctx, "token refresh attempt")

	token, err := s.refresh.Validate(ctx, value)
	if err != nil {
		return nil, err
	}

	rotated, err := s.refresh.Rotate(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Owner deleted between issuance and redemption.
			s.logger.Warn(ctx, "refresh token owner no longer exists", "user_id", token.UserID)
			return nil, common.ErrRefreshTokenInvalid
		}
		return nil, err
	}

	accessToken, err := s.codec.Mint(user.Email, user.Roles())
	if err != nil {
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "tokens refreshed", "user_id", user.ID)

	return &TokenPair{AccessToken: accessToken, RefreshToken: rotated.Token, User: user}, nil
}

// Logout validates the presented refresh token and revokes every active
// token of its owner: logout tears the whole session lineage down, not just
// the one value. Empty or whitespace-only input is rejected as
// ErrMissingRefreshToken.
func (s *AuthService) Logout(ctx context.Context, value string) error {
	s.logger.Debug(ctx, "logout attempt")

	if strings.TrimSpace(value) == "" {
		s.logger.Debug(ctx, "logout without refresh token")
		return common.ErrMissingRefreshToken
	}

	token, err := s.refresh.Validate(ctx, value)
	if err != nil {
		return err
	}

	if err := s.refresh.RevokeAll(ctx, s.db, token.UserID); err != nil {
		return err
	}

	s.logger.Info(ctx, "logout succeeded", "user_id", token.UserID)
	return nil
}
