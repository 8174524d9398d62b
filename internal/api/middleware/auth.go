package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/culturecart/accounts-api/internal/api/metrics"
	"github.com/culturecart/accounts-api/internal/core/domain"
	"github.com/culturecart/accounts-api/internal/pkg/token"
)

// TokenVerifier checks a bearer token's signature and expiry.
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// UserLookup re-fetches the live account named by a token.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Authenticator builds auth gates sharing one verifier and user store.
type Authenticator struct {
	tokens TokenVerifier
	users  UserLookup
}

func NewAuthenticator(tokens TokenVerifier, users UserLookup) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// AdminOnly admits admins.
func (a *Authenticator) AdminOnly() echo.MiddlewareFunc {
	return a.Gate(domain.RoleAdmin)
}

// AnyUser admits every non-suspended account.
func (a *Authenticator) AnyUser() echo.MiddlewareFunc {
	return a.Gate(domain.RoleUser, domain.RoleAdmin, domain.RoleArtisan)
}

// ArtisanOrAdmin admits artisans and admins.
func (a *Authenticator) ArtisanOrAdmin() echo.MiddlewareFunc {
	return a.Gate(domain.RoleArtisan, domain.RoleAdmin)
}

// Gate authenticates the bearer token, re-fetches the account it names and
// enforces roles against the account's live role, never the role claimed in
// the token. An empty roles list admits any authenticated, non-suspended
// account. On success the identity is attached to the request context.
func (a *Authenticator) Gate(roles ...domain.Role) echo.MiddlewareFunc {
	required := append([]domain.Role(nil), roles...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := a.authenticate(c, required)
			if err != nil {
				metrics.GateRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return err
			}

			c.Set("user_id", id.ID)
			req := c.Request()
			c.SetRequest(req.WithContext(WithIdentity(req.Context(), id)))
			return next(c)
		}
	}
}

func (a *Authenticator) authenticate(c echo.Context, required []domain.Role) (domain.Identity, error) {
	raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if !ok {
		return domain.Identity{}, domain.ErrNoToken
	}

	claims, err := a.tokens.Verify(raw)
	if err != nil {
		return domain.Identity{}, err
	}

	user, err := a.users.FindByID(c.Request().Context(), claims.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.Identity{}, domain.ErrTokenSubjectGone
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("auth gate: %w", err)
	}

	if user.Banned() {
		return domain.Identity{}, domain.ErrAccountSuspended
	}
	if len(required) > 0 && !hasRole(user.Role, required) {
		return domain.Identity{}, &domain.RoleError{Required: required}
	}
	return domain.IdentityOf(user), nil
}

func bearerToken(header string) (string, bool) {
	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func hasRole(role domain.Role, allowed []domain.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoToken):
		return "no_token"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired_token"
	case errors.Is(err, domain.ErrTokenInvalid):
		return "invalid_token"
	case errors.Is(err, domain.ErrTokenSubjectGone):
		return "user_not_found"
	case errors.Is(err, domain.ErrAccountSuspended):
		return "suspended"
	case errors.Is(err, domain.ErrInsufficientRole):
		return "insufficient_role"
	default:
		return "error"
	}
}
