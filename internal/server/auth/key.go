// Package auth implements the access token codec: minting, verification, and
// subject extraction of the short-lived signed bearer tokens.
package auth

import "errors"

// SigningKey wraps the process-wide HMAC key material. It is constructed
// once at startup and never mutated; concurrent reads need no
// synchronization.
type SigningKey struct {
	secret []byte
}

// NewSigningKey derives the signing key from the configured secret.
func NewSigningKey(secret string) (*SigningKey, error) {
	if secret == "" {
		return nil, errors.New("signing secret must not be empty")
	}
	return &SigningKey{secret: []byte(secret)}, nil
}
