package domain

import (
	"errors"
	"strings"
)

// Auth gate failures.
var (
	ErrNoToken          = errors.New("no token provided")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenSubjectGone = errors.New("token subject no longer exists")
	ErrAccountSuspended = errors.New("account has been suspended")
	ErrInsufficientRole = errors.New("insufficient role")
)

// Account failures.
var (
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidAdminCredentials = errors.New("invalid admin credentials")
	ErrMissingCredentials      = errors.New("email and password are required")
	ErrUserNotFound            = errors.New("user not found")
	ErrAdminNotFound           = errors.New("admin not found")
	ErrEmailTaken              = errors.New("email already registered")
	ErrUsernameTaken           = errors.New("username already taken")
	ErrAdminSelfRegistration   = errors.New("admin role cannot be self-assigned")
	ErrOwnRoleChange           = errors.New("admins cannot change their own role")
	ErrInvalidRole             = errors.New("invalid role")
	ErrTooManyAttempts         = errors.New("too many failed login attempts")
	ErrNoFile                  = errors.New("no file uploaded")
	ErrNoFiles                 = errors.New("no files uploaded")
	ErrTooManyFiles            = errors.New("too many files")
	ErrUnsupportedFile         = errors.New("only image uploads are allowed")
)

// ValidationError carries every field-level violation found in a payload.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// NewValidationError returns nil when errs is empty.
func NewValidationError(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}

// RoleError is returned by the auth gate when the live role is outside the
// route's allow-list. It matches ErrInsufficientRole with errors.Is.
type RoleError struct {
	Required []Role
}

func (e *RoleError) Error() string {
	names := make([]string, len(e.Required))
	for i, r := range e.Required {
		names[i] = string(r)
	}
	return "access denied, required roles: " + strings.Join(names, ", ")
}

func (e *RoleError) Is(target error) bool {
	return target == ErrInsufficientRole
}
