package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/culturecart/accounts-api/internal/api/middleware"
	"github.com/culturecart/accounts-api/internal/core/domain"
	"github.com/culturecart/accounts-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn        func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn           func(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error)
	loginOrRegisterFn func(ctx context.Context, in ports.LoginOrRegisterInput) (*ports.AuthResult, error)
	adminLoginFn      func(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error)
	logouts           []domain.Identity
	adminLogouts      []domain.Identity
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) LoginOrRegister(ctx context.Context, in ports.LoginOrRegisterInput) (*ports.AuthResult, error) {
	return s.loginOrRegisterFn(ctx, in)
}

func (s *stubAuthService) AdminLogin(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	return s.adminLoginFn(ctx, in)
}

func (s *stubAuthService) Logout(_ context.Context, who domain.Identity, _ domain.ClientInfo) error {
	s.logouts = append(s.logouts, who)
	return nil
}

func (s *stubAuthService) AdminLogout(_ context.Context, who domain.Identity, _ domain.ClientInfo) error {
	s.adminLogouts = append(s.adminLogouts, who)
	return nil
}

type stubProfileService struct {
	getFn      func(ctx context.Context, userID string) (*domain.User, error)
	updateFn   func(ctx context.Context, userID string, in ports.ProfileUpdateInput) (*domain.User, error)
	avatarFn   func(ctx context.Context, userID string, file ports.UploadFile) (string, *domain.User, error)
	galleryFn  func(ctx context.Context, userID string, files []ports.UploadFile) ([]string, *domain.User, error)
	artisansFn func(ctx context.Context) ([]*domain.User, error)
}

func (s *stubProfileService) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.getFn(ctx, userID)
}

func (s *stubProfileService) Update(ctx context.Context, userID string, in ports.ProfileUpdateInput) (*domain.User, error) {
	return s.updateFn(ctx, userID, in)
}

func (s *stubProfileService) UploadAvatar(ctx context.Context, userID string, file ports.UploadFile) (string, *domain.User, error) {
	return s.avatarFn(ctx, userID, file)
}

func (s *stubProfileService) UploadGallery(ctx context.Context, userID string, files []ports.UploadFile) ([]string, *domain.User, error) {
	return s.galleryFn(ctx, userID, files)
}

func (s *stubProfileService) Artisans(ctx context.Context) ([]*domain.User, error) {
	return s.artisansFn(ctx)
}

type stubAdminService struct {
	meFn        func(ctx context.Context, adminID string) (*domain.User, error)
	dashboardFn func(ctx context.Context) (*ports.Dashboard, error)
	createFn    func(ctx context.Context, in ports.CreateAccountInput) (*domain.User, error)
	setRoleFn   func(ctx context.Context, actor domain.Identity, userID, role string) (*domain.User, error)
}

func (s *stubAdminService) Me(ctx context.Context, adminID string) (*domain.User, error) {
	return s.meFn(ctx, adminID)
}

func (s *stubAdminService) Dashboard(ctx context.Context) (*ports.Dashboard, error) {
	return s.dashboardFn(ctx)
}

func (s *stubAdminService) CreateAccount(ctx context.Context, in ports.CreateAccountInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubAdminService) SetRole(ctx context.Context, actor domain.Identity, userID, role string) (*domain.User, error) {
	return s.setRoleFn(ctx, actor, userID, role)
}

// newContext builds an echo context for a request with the given body. A
// non-nil who is attached the way the auth gate would.
func newContext(method, target, contentType string, body io.Reader, who *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	req.Header.Set("User-Agent", "handler-test")
	if who != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), *who))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func jsonContext(method, target, body string, who *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	return newContext(method, target, echo.MIMEApplicationJSON, strings.NewReader(body), who)
}
