package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/culturecart/accounts-api/internal/api/metrics"
	"github.com/culturecart/accounts-api/internal/core/domain"
	"github.com/culturecart/accounts-api/internal/core/ports"
	"github.com/culturecart/accounts-api/internal/pkg/token"
	"github.com/culturecart/accounts-api/internal/pkg/validation"
)

// loginFlow parameterises the shared credential check.
type loginFlow struct {
	name     string
	session  domain.SessionType
	badCreds error
	// role, when set, is the only role the flow accepts.
	role domain.Role
}

var (
	flowLogin           = loginFlow{name: "login", session: domain.SessionLogin, badCreds: domain.ErrInvalidCredentials}
	flowLoginOrRegister = loginFlow{name: "login_or_register", session: domain.SessionLogin, badCreds: domain.ErrInvalidCredentials}
	flowAdminLogin      = loginFlow{name: "admin_login", session: domain.SessionAdminLogin, badCreds: domain.ErrInvalidAdminCredentials, role: domain.RoleAdmin}
)

var _ ports.AuthService = (*AuthService)(nil)

// AuthService implements registration, login and logout.
type AuthService struct {
	registrar
	tokens   ports.TokenService
	sessions ports.SessionRecorder
	throttle ports.LoginThrottle
}

// NewAuthService wires the account state machine. A nil throttle disables
// login throttling.
func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	sessions ports.SessionRecorder,
	throttle ports.LoginThrottle,
	log zerolog.Logger,
) *AuthService {
	if throttle == nil {
		throttle = ports.NopThrottle{}
	}
	return &AuthService{
		registrar: registrar{
			users:  users,
			hasher: hasher,
			log:    log.With().Str("component", "auth_service").Logger(),
			now:    time.Now,
		},
		tokens:   tokens,
		sessions: sessions,
		throttle: throttle,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	username := validation.Sanitize(in.Username)
	email := validation.NormalizeEmail(in.Email)
	if err := validation.Registration(username, email, in.Password, in.Role).Err(); err != nil {
		return nil, err
	}

	role := domain.Role(in.Role)
	if role == "" {
		role = domain.RoleUser
	}
	if role == domain.RoleAdmin {
		s.log.Warn().Str("email", email).Msg("self-registration as admin refused")
		return nil, domain.ErrAdminSelfRegistration
	}

	user, err := s.create(ctx, newAccount{
		Username: username,
		Email:    email,
		Password: in.Password,
		Role:     role,
		Source:   "register",
	})
	if err != nil {
		return nil, err
	}

	raw, err := s.tokens.Issue(token.ClaimsFor(user))
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: raw, User: public(user)}, nil
}

func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	return s.login(ctx, flowLogin, in)
}

func (s *AuthService) AdminLogin(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	return s.login(ctx, flowAdminLogin, in)
}

func (s *AuthService) login(ctx context.Context, flow loginFlow, in ports.LoginInput) (*ports.AuthResult, error) {
	email := validation.NormalizeEmail(in.Email)
	if err := validation.Login(email, in.Password).Err(); err != nil {
		return nil, err
	}

	if err := s.checkThrottle(ctx, flow, in.Client.IP, email); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, s.reject(ctx, flow, in.Client.IP, email)
		}
		return nil, err
	}
	return s.verifyAndIssue(ctx, flow, user, in.Password, in.Client)
}

// LoginOrRegister signs in an existing account or creates a user-role account
// on first contact. It skips the registration validator but still hashes
// before persisting and still rejects a wrong password for an existing
// account.
func (s *AuthService) LoginOrRegister(ctx context.Context, in ports.LoginOrRegisterInput) (*ports.AuthResult, error) {
	email := validation.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrMissingCredentials
	}

	flow := flowLoginOrRegister
	if err := s.checkThrottle(ctx, flow, in.Client.IP, email); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return s.verifyAndIssue(ctx, flow, user, in.Password, in.Client)
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	username := validation.Sanitize(in.Username)
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}
	if username == "" {
		return nil, validation.Username(username).Err()
	}

	created, err := s.create(ctx, newAccount{
		Username: username,
		Email:    email,
		Password: in.Password,
		Role:     domain.RoleUser,
		Source:   flow.name,
	})
	if errors.Is(err, domain.ErrEmailTaken) {
		// Lost a race with a concurrent first contact for the same email.
		user, err = s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return s.verifyAndIssue(ctx, flow, user, in.Password, in.Client)
	}
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, flow, created, in.Client)
}

func (s *AuthService) Logout(_ context.Context, who domain.Identity, client domain.ClientInfo) error {
	s.record(who.ID, domain.SessionLogout, client)
	return nil
}

func (s *AuthService) AdminLogout(_ context.Context, who domain.Identity, client domain.ClientInfo) error {
	s.record(who.ID, domain.SessionAdminLogout, client)
	return nil
}

func (s *AuthService) verifyAndIssue(ctx context.Context, flow loginFlow, user *domain.User, password string, client domain.ClientInfo) (*ports.AuthResult, error) {
	if user.Banned() {
		metrics.LoginAttemptsTotal.WithLabelValues(flow.name, "suspended").Inc()
		s.log.Warn().Str("user_id", user.ID).Str("flow", flow.name).Msg("login refused for suspended account")
		return nil, domain.ErrAccountSuspended
	}
	if flow.role != "" && user.Role != flow.role {
		return nil, s.reject(ctx, flow, client.IP, user.Email)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.reject(ctx, flow, client.IP, user.Email)
	}

	if err := s.throttle.Reset(ctx, client.IP, user.Email); err != nil {
		s.log.Warn().Err(err).Msg("login throttle reset failed")
	}
	return s.issue(ctx, flow, user, client)
}

func (s *AuthService) issue(_ context.Context, flow loginFlow, user *domain.User, client domain.ClientInfo) (*ports.AuthResult, error) {
	raw, err := s.tokens.Issue(token.ClaimsFor(user))
	if err != nil {
		return nil, err
	}

	s.record(user.ID, flow.session, client)
	metrics.LoginAttemptsTotal.WithLabelValues(flow.name, "success").Inc()
	return &ports.AuthResult{Token: raw, User: public(user)}, nil
}

// checkThrottle fails open when the throttle backend is unavailable.
func (s *AuthService) checkThrottle(ctx context.Context, flow loginFlow, ip, email string) error {
	blocked, err := s.throttle.Blocked(ctx, ip, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login throttle unavailable")
		return nil
	}
	if blocked {
		metrics.LoginAttemptsTotal.WithLabelValues(flow.name, "throttled").Inc()
		s.log.Warn().Str("ip", ip).Str("flow", flow.name).Msg("login throttled")
		return domain.ErrTooManyAttempts
	}
	return nil
}

// reject counts a failed credential check and returns the flow's generic
// error, identical whether the account exists or not.
func (s *AuthService) reject(ctx context.Context, flow loginFlow, ip, email string) error {
	if err := s.throttle.Fail(ctx, ip, email); err != nil {
		s.log.Warn().Err(err).Msg("login throttle update failed")
	}
	metrics.LoginAttemptsTotal.WithLabelValues(flow.name, "invalid_credentials").Inc()
	return flow.badCreds
}

func (s *AuthService) record(userID string, kind domain.SessionType, client domain.ClientInfo) {
	s.sessions.Record(domain.Session{
		UserID:    userID,
		Type:      kind,
		UserAgent: client.UserAgent,
		IP:        client.IP,
		CreatedAt: s.now().UTC(),
	})
}
