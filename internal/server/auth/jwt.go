package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cheridanh/infradev/internal/common"
)

// Claims carried by an access token: the subject (the account email), the
// role list as it existed at mint time, and the registered issued-at/expiry
// pair.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Codec mints and verifies access tokens against an immutable signing key.
// It is stateless apart from the key and safe for concurrent use.
type Codec struct {
	key       *SigningKey
	accessTTL time.Duration
}

func NewCodec(key *SigningKey, accessTTL time.Duration) *Codec {
	return &Codec{key: key, accessTTL: accessTTL}
}

// Mint builds claims with issued-at = now and expires-at = now + the access
// TTL, signs them with HS256, and returns the compact representation.
func (c *Codec) Mint(subject string, roles []string) (string, error) {
	now := time.Now()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.key.secret)
}

// ParseAndVerify decodes a token, checks its signature, and checks expiry
// against the current time with no leeway. Failures are reported as
// common.ErrTokenExpired (signature otherwise valid) or
// common.ErrMalformedToken (anything structurally or cryptographically
// wrong); it never panics on untrusted input.
func (c *Codec) ParseAndVerify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrMalformedToken
	}
	if !token.Valid {
		return nil, common.ErrMalformedToken
	}
	return claims, nil
}

// ExtractSubject returns the subject of a token after checking structure and
// signature only. Expiry is deliberately not re-raised here; callers that
// need expiry semantics use ParseAndVerify.
func (c *Codec) ExtractSubject(tokenString string) (string, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if _, err := parser.ParseWithClaims(tokenString, claims, c.keyFunc); err != nil {
		return "", common.ErrMalformedToken
	}
	return claims.Subject, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return c.key.secret, nil
}
