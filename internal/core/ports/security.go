package ports

import (
	"context"

	"github.com/culturecart/accounts-api/internal/pkg/token"
)

// PasswordHasher hashes and verifies account secrets.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}

// TokenService mints and verifies bearer tokens.
type TokenService interface {
	Issue(claims token.Claims) (string, error)
	IssueLongLived(claims token.Claims) (string, error)
	// Verify returns domain.ErrTokenExpired or domain.ErrTokenInvalid (wrapped)
	// on failure.
	Verify(raw string) (*token.Claims, error)
}

// LoginThrottle counts failed credential checks per client and email.
type LoginThrottle interface {
	Blocked(ctx context.Context, ip, email string) (bool, error)
	Fail(ctx context.Context, ip, email string) error
	Reset(ctx context.Context, ip, email string) error
}

// NopThrottle never blocks. Used when no throttle backend is configured.
type NopThrottle struct{}

func (NopThrottle) Blocked(context.Context, string, string) (bool, error) { return false, nil }

func (NopThrottle) Fail(context.Context, string, string) error { return nil }

func (NopThrottle) Reset(context.Context, string, string) error { return nil }

var _ LoginThrottle = NopThrottle{}
