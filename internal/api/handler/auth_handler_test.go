package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/culturecart/accounts-api/internal/core/domain"
	"github.com/culturecart/accounts-api/internal/core/ports"
)

func TestAccountHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Username != "alice" || in.Email != "alice@example.com" || in.Role != "artisan" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{
				Token: "token123",
				User:  &domain.User{ID: "u1", Username: "alice", Role: domain.RoleArtisan, PasswordHash: "$2a$secret"},
			}, nil
		},
	}
	h := NewAccountHandler(stub)

	c, rec := jsonContext(http.MethodPost, "/api/users/register",
		`{"username":"alice","email":"alice@example.com","password":"Abcdef1!","role":"artisan"}`, nil)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["success"] != true || resp["token"] != "token123" || resp["msg"] != "User registered successfully" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "alice" || user["role"] != "artisan" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Fatalf("password hash must never be serialized")
	}
}

func TestAccountHandler_Register_ServiceError(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	h := NewAccountHandler(stub)

	c, _ := jsonContext(http.MethodPost, "/api/users/register", `{"username":"bob"}`, nil)
	if err := h.Register(c); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAccountHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAccountHandler(stub)

	c, _ := jsonContext(http.MethodPost, "/api/users/register", "not-json", nil)
	if err := h.Register(c); err == nil {
		t.Fatalf("expected bind error")
	}
}

func TestAccountHandler_Login_PassesClientInfo(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
			if in.Email != "alice@example.com" || in.Password != "secret" {
				t.Fatalf("unexpected args: %+v", in)
			}
			if in.Client.UserAgent != "handler-test" || in.Client.IP == "" {
				t.Fatalf("client info not forwarded: %+v", in.Client)
			}
			return &ports.AuthResult{Token: "token123", User: &domain.User{Username: "alice", Role: domain.RoleUser}}, nil
		},
	}
	h := NewAccountHandler(stub)

	c, rec := jsonContext(http.MethodPost, "/api/users/login", `{"email":"alice@example.com","password":"secret"}`, nil)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "token123" || resp.Msg != "Login successful" || resp.User.Username != "alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAccountHandler_Login_Errors(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrAccountSuspended, domain.ErrTooManyAttempts} {
		stub := &stubAuthService{
			loginFn: func(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
				return nil, want
			},
		}
		c, rec := jsonContext(http.MethodPost, "/api/users/login", `{"email":"a@b.co","password":"x"}`, nil)
		if err := NewAccountHandler(stub).Login(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
		if rec.Body.Len() != 0 {
			t.Fatalf("handler must leave the response to the error handler")
		}
	}
}

func TestAccountHandler_LoginOrRegister(t *testing.T) {
	stub := &stubAuthService{
		loginOrRegisterFn: func(ctx context.Context, in ports.LoginOrRegisterInput) (*ports.AuthResult, error) {
			if in.Username != "" || in.Email != "new@example.com" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{Token: "t", User: &domain.User{Username: "new"}}, nil
		},
	}
	c, rec := jsonContext(http.MethodPost, "/api/users/login-or-register", `{"email":"new@example.com","password":"pw"}`, nil)
	if err := NewAccountHandler(stub).LoginOrRegister(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAccountHandler_Logout(t *testing.T) {
	stub := &stubAuthService{}
	h := NewAccountHandler(stub)

	who := &domain.Identity{ID: "u1", Role: domain.RoleUser}
	c, rec := jsonContext(http.MethodPost, "/api/users/logout", "", who)
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || len(stub.logouts) != 1 || stub.logouts[0].ID != "u1" {
		t.Fatalf("logout not recorded: code=%d logouts=%+v", rec.Code, stub.logouts)
	}
}

func TestAccountHandler_Logout_WithoutGate(t *testing.T) {
	c, _ := jsonContext(http.MethodPost, "/api/users/logout", "", nil)
	if err := NewAccountHandler(&stubAuthService{}).Logout(c); !errors.Is(err, domain.ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}
