package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/culturecart/accounts-api/internal/core/domain"
	"github.com/culturecart/accounts-api/internal/infrastructure/db/memory"
	"github.com/culturecart/accounts-api/internal/pkg/token"
)

const secret = "secret"

type gateFixture struct {
	e      *echo.Echo
	users  *memory.UserRepository
	tokens *token.JWT
	auth   *Authenticator
}

func newGateFixture() *gateFixture {
	users := memory.NewUserRepository()
	tokens := token.NewJWT(secret)
	return &gateFixture{e: echo.New(), users: users, tokens: tokens, auth: NewAuthenticator(tokens, users)}
}

func (f *gateFixture) user(t *testing.T, name string, role domain.Role) (*domain.User, string) {
	t.Helper()
	u, err := f.users.Create(context.Background(), &domain.User{Username: name, Email: name + "@example.com", Role: role})
	if err != nil {
		t.Fatal(err)
	}
	raw, err := f.tokens.Issue(token.ClaimsFor(u))
	if err != nil {
		t.Fatal(err)
	}
	return u, raw
}

// run passes a request with the given Authorization header through mw and
// returns the identity seen by the next handler and the gate's error.
func (f *gateFixture) run(mw echo.MiddlewareFunc, header string) (*domain.Identity, error) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := f.e.NewContext(req, httptest.NewRecorder())

	var seen *domain.Identity
	err := mw(func(c echo.Context) error {
		id, ok := IdentityFromContext(c.Request().Context())
		if !ok {
			return errors.New("identity missing from context")
		}
		seen = &id
		return c.NoContent(http.StatusOK)
	})(c)
	return seen, err
}

func TestGate_ValidToken(t *testing.T) {
	f := newGateFixture()
	u, raw := f.user(t, "alice", domain.RoleUser)

	id, err := f.run(f.auth.AnyUser(), "Bearer "+raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == nil || id.ID != u.ID || id.Username != "alice" || id.Role != domain.RoleUser {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestGate_SchemeIsCaseInsensitive(t *testing.T) {
	f := newGateFixture()
	_, raw := f.user(t, "alice", domain.RoleUser)

	if _, err := f.run(f.auth.Gate(), "bearer "+raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGate_NoToken(t *testing.T) {
	f := newGateFixture()
	for _, header := range []string{"", "Token abc", "Bearer", "Bearer   ", "abc"} {
		if _, err := f.run(f.auth.AnyUser(), header); !errors.Is(err, domain.ErrNoToken) {
			t.Errorf("header %q: expected ErrNoToken, got %v", header, err)
		}
	}
}

func TestGate_InvalidToken(t *testing.T) {
	f := newGateFixture()
	u, _ := f.user(t, "alice", domain.RoleUser)

	forged, _ := token.NewJWT("other-secret").Issue(token.ClaimsFor(u))
	for _, raw := range []string{"garbage", forged} {
		_, err := f.run(f.auth.AnyUser(), "Bearer "+raw)
		if !errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrTokenExpired) {
			t.Errorf("expected ErrTokenInvalid, got %v", err)
		}
	}
}

func TestGate_ExpiredToken(t *testing.T) {
	f := newGateFixture()
	u, _ := f.user(t, "alice", domain.RoleUser)

	past := func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	raw, err := token.NewJWT(secret, token.WithClock(past)).Issue(token.ClaimsFor(u))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.run(f.auth.AnyUser(), "Bearer "+raw); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestGate_SubjectGone(t *testing.T) {
	f := newGateFixture()
	ghost := &domain.User{ID: "65f000000000000000000000", Username: "ghost", Email: "g@example.com", Role: domain.RoleUser}
	raw, _ := f.tokens.Issue(token.ClaimsFor(ghost))

	if _, err := f.run(f.auth.AnyUser(), "Bearer "+raw); !errors.Is(err, domain.ErrTokenSubjectGone) {
		t.Fatalf("expected ErrTokenSubjectGone, got %v", err)
	}
}

func TestGate_BannedAfterIssuance(t *testing.T) {
	f := newGateFixture()
	u, raw := f.user(t, "alice", domain.RoleUser)

	if _, err := f.run(f.auth.AnyUser(), "Bearer "+raw); err != nil {
		t.Fatalf("token should work before the ban: %v", err)
	}
	if _, err := f.users.SetRole(context.Background(), u.ID, domain.RoleBanned); err != nil {
		t.Fatal(err)
	}

	// Suspension wins even over an empty allow-list.
	for _, mw := range []echo.MiddlewareFunc{f.auth.AnyUser(), f.auth.Gate()} {
		if _, err := f.run(mw, "Bearer "+raw); !errors.Is(err, domain.ErrAccountSuspended) {
			t.Fatalf("expected ErrAccountSuspended, got %v", err)
		}
	}
}

func TestGate_InsufficientRole(t *testing.T) {
	f := newGateFixture()
	_, raw := f.user(t, "alice", domain.RoleUser)

	_, err := f.run(f.auth.AdminOnly(), "Bearer "+raw)
	if !errors.Is(err, domain.ErrInsufficientRole) {
		t.Fatalf("expected ErrInsufficientRole, got %v", err)
	}
	var re *domain.RoleError
	if !errors.As(err, &re) || len(re.Required) != 1 || re.Required[0] != domain.RoleAdmin {
		t.Fatalf("expected RoleError listing admin, got %v", err)
	}

	if _, err := f.run(f.auth.ArtisanOrAdmin(), "Bearer "+raw); !errors.Is(err, domain.ErrInsufficientRole) {
		t.Fatalf("user must not pass ArtisanOrAdmin, got %v", err)
	}
}

func TestGate_UsesLiveRole(t *testing.T) {
	f := newGateFixture()
	u, raw := f.user(t, "alice", domain.RoleAdmin)

	if _, err := f.users.SetRole(context.Background(), u.ID, domain.RoleUser); err != nil {
		t.Fatal(err)
	}
	if _, err := f.run(f.auth.AdminOnly(), "Bearer "+raw); !errors.Is(err, domain.ErrInsufficientRole) {
		t.Fatalf("demoted admin must be refused, got %v", err)
	}

	v, rawV := f.user(t, "victor", domain.RoleUser)
	if _, err := f.users.SetRole(context.Background(), v.ID, domain.RoleArtisan); err != nil {
		t.Fatal(err)
	}
	id, err := f.run(f.auth.ArtisanOrAdmin(), "Bearer "+rawV)
	if err != nil || id.Role != domain.RoleArtisan {
		t.Fatalf("promoted artisan should pass with live role, got %+v %v", id, err)
	}
}

type brokenUsers struct{}

func (brokenUsers) FindByID(context.Context, string) (*domain.User, error) {
	return nil, errors.New("connection reset")
}

func TestGate_StoreFailure(t *testing.T) {
	f := newGateFixture()
	_, raw := f.user(t, "alice", domain.RoleUser)
	auth := NewAuthenticator(f.tokens, brokenUsers{})

	_, err := f.run(auth.AnyUser(), "Bearer "+raw)
	if err == nil || errors.Is(err, domain.ErrTokenSubjectGone) || errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected an internal error, got %v", err)
	}
}

func TestRejectionReason(t *testing.T) {
	cases := map[error]string{
		domain.ErrNoToken:                         "no_token",
		domain.ErrTokenInvalid:                    "invalid_token",
		domain.ErrTokenExpired:                    "expired_token",
		domain.ErrTokenSubjectGone:                "user_not_found",
		domain.ErrAccountSuspended:                "suspended",
		&domain.RoleError{Required: nil}:          "insufficient_role",
		errors.New("anything else"):               "error",
	}
	for err, want := range cases {
		if got := rejectionReason(err); got != want {
			t.Errorf("rejectionReason(%v) = %q; want %q", err, got, want)
		}
	}
}
