// Package token issues and verifies the HS256 bearer tokens handed to clients.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/culturecart/accounts-api/internal/core/domain"
)

const (
	// DefaultTTL is the lifetime of tokens returned by the account endpoints.
	DefaultTTL = 7 * 24 * time.Hour
	// LongLivedTTL is the lifetime of refresh-style tokens.
	LongLivedTTL = 30 * 24 * time.Hour
)

// Claims is the identity payload embedded in every token.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

// ClaimsFor builds the identity claims of a user record.
func ClaimsFor(u *domain.User) Claims {
	return Claims{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// JWT is a symmetric token manager. The secret is fixed for the process
// lifetime.
type JWT struct {
	secret []byte
	now    func() time.Time
}

// Option customises a JWT.
type Option func(*JWT)

// WithClock overrides the time source used for issued-at, expiry and
// verification.
func WithClock(now func() time.Time) Option {
	return func(j *JWT) { j.now = now }
}

// NewJWT returns a manager signing with secret.
func NewJWT(secret string, opts ...Option) *JWT {
	j := &JWT{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Issue signs claims with DefaultTTL.
func (j *JWT) Issue(claims Claims) (string, error) {
	return j.issue(claims, DefaultTTL)
}

// IssueLongLived signs claims with LongLivedTTL.
func (j *JWT) IssueLongLived(claims Claims) (string, error) {
	return j.issue(claims, LongLivedTTL)
}

func (j *JWT) issue(claims Claims, ttl time.Duration) (string, error) {
	now := j.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry. Expired tokens yield an error matching
// domain.ErrTokenExpired; every other failure matches domain.ErrTokenInvalid.
func (j *JWT) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	keyFunc := func(*jwt.Token) (interface{}, error) { return j.secret, nil }
	tkn, err := jwt.ParseWithClaims(raw, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	if !tkn.Valid || claims.UserID == "" {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
