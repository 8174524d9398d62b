package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/culturecart/accounts-api/internal/core/domain"
	"github.com/culturecart/accounts-api/internal/core/ports"
	"github.com/culturecart/accounts-api/internal/pkg/validation"
)

const recentSessionsLimit = 10

// defaultAdminUsername is the username given to the seeded administrator.
const defaultAdminUsername = "admin"

var _ ports.AdminService = (*AdminService)(nil)

// AdminService backs the admin console.
type AdminService struct {
	registrar
	sessions ports.SessionRepository
}

func NewAdminService(users ports.UserRepository, sessions ports.SessionRepository, hasher ports.PasswordHasher, log zerolog.Logger) *AdminService {
	return &AdminService{
		registrar: registrar{
			users:  users,
			hasher: hasher,
			log:    log.With().Str("component", "admin_service").Logger(),
			now:    time.Now,
		},
		sessions: sessions,
	}
}

// Me returns the calling admin. Accounts that vanished or lost the admin role
// since their token was issued are reported as ErrAdminNotFound.
func (s *AdminService) Me(ctx context.Context, adminID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, adminID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleAdmin {
		return nil, domain.ErrAdminNotFound
	}
	return public(user), nil
}

func (s *AdminService) Dashboard(ctx context.Context) (*ports.Dashboard, error) {
	counts, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.sessions.Recent(ctx, recentSessionsLimit)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []domain.SessionView{}
	}
	return &ports.Dashboard{Stats: counts, RecentSessions: recent}, nil
}

// CreateAccount is the only path that may mint an admin.
func (s *AdminService) CreateAccount(ctx context.Context, in ports.CreateAccountInput) (*domain.User, error) {
	username := validation.Sanitize(in.Username)
	email := validation.NormalizeEmail(in.Email)
	if err := validation.Registration(username, email, in.Password, in.Role).Err(); err != nil {
		return nil, err
	}

	role := domain.Role(in.Role)
	if role == "" {
		role = domain.RoleUser
	}

	user, err := s.create(ctx, newAccount{
		Username: username,
		Email:    email,
		Password: in.Password,
		Role:     role,
		Source:   "admin",
	})
	if err != nil {
		return nil, err
	}
	return public(user), nil
}

// SetRole changes another account's role. Setting RoleBanned suspends the
// account on its next request.
func (s *AdminService) SetRole(ctx context.Context, actor domain.Identity, userID, role string) (*domain.User, error) {
	r := domain.Role(role)
	if !r.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if actor.ID == userID {
		return nil, domain.ErrOwnRoleChange
	}

	user, err := s.users.SetRole(ctx, userID, r)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("actor_id", actor.ID).
		Str("user_id", userID).
		Str("role", role).
		Msg("account role changed")
	return public(user), nil
}

// EnsureDefaultAdmin seeds the administrator account when no account holds
// email. It reports whether an account was created. A duplicate key on insert
// means another instance seeded first and is not an error.
func (s *AdminService) EnsureDefaultAdmin(ctx context.Context, email, password string) (bool, error) {
	email = validation.NormalizeEmail(email)

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, err
	}

	_, err = s.create(ctx, newAccount{
		Username: defaultAdminUsername,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
		Source:   "bootstrap",
	})
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		return false, nil
	case errors.Is(err, domain.ErrUsernameTaken):
		s.log.Warn().Str("username", defaultAdminUsername).Msg("default admin not seeded: username held by another account")
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}
