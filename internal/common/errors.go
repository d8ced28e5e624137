// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Account errors. ErrUserNotFound is an internal signal only: login paths
	// collapse it into ErrInvalidCredentials before anything leaves the
	// service, so callers cannot probe which emails are registered.
	ErrEmailExists        = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Access token errors (signature/structure vs lifetime).
	ErrMalformedToken = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")

	// Refresh token lifecycle errors. ErrRefreshTokenInvalid deliberately
	// covers both "never existed" and "revoked".
	ErrRefreshTokenInvalid = errors.New("refresh token invalid or revoked")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrMissingRefreshToken = errors.New("missing refresh token")
)
