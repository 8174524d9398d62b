package ports

import (
	"context"

	"github.com/culturecart/accounts-api/internal/core/domain"
)

// RegisterInput carries a registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// LoginInput carries a login request. Client feeds the audit trail and the
// login throttle.
type LoginInput struct {
	Email    string
	Password string
	Client   domain.ClientInfo
}

// LoginOrRegisterInput carries the reduced-friction upsert request.
type LoginOrRegisterInput struct {
	Username string
	Email    string
	Password string
	Client   domain.ClientInfo
}

// AuthResult is a freshly issued token and the account it was issued for.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService implements the account state machine.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	LoginOrRegister(ctx context.Context, in LoginOrRegisterInput) (*AuthResult, error)
	AdminLogin(ctx context.Context, in LoginInput) (*AuthResult, error)
	// Logout only writes an audit entry; bearer tokens cannot be revoked.
	Logout(ctx context.Context, who domain.Identity, client domain.ClientInfo) error
	AdminLogout(ctx context.Context, who domain.Identity, client domain.ClientInfo) error
}
