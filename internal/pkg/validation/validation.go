// Package validation holds the pure input rules applied to account payloads.
//
// Every check returns a Result listing all violations found; aggregate checks
// concatenate field results instead of stopping at the first failure so a
// client sees every problem in one round trip.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/culturecart/accounts-api/internal/core/domain"
)

const (
	usernameMin = 3
	usernameMax = 20
	passwordMin = 8
)

// PasswordSymbols is the punctuation set a password must draw at least one
// character from.
const PasswordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

var (
	usernameCharset = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	hasUpper        = regexp.MustCompile(`[A-Z]`)
	hasLower        = regexp.MustCompile(`[a-z]`)
	hasDigit        = regexp.MustCompile(`[0-9]`)

	shape = validator.New()
)

// Result is the outcome of a validation rule.
type Result struct {
	Valid  bool
	Errors []string
}

func result(errs []string) Result {
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// Err converts r into a *domain.ValidationError, or nil when valid.
func (r Result) Err() error {
	return domain.NewValidationError(r.Errors)
}

// Username checks presence, length (3–20) and charset [A-Za-z0-9_].
func Username(username string) Result {
	if username == "" {
		return result([]string{"Username is required"})
	}

	var errs []string
	n := utf8.RuneCountInString(username)
	if n < usernameMin {
		errs = append(errs, "Username must be at least 3 characters long")
	}
	if n > usernameMax {
		errs = append(errs, "Username must be at most 20 characters long")
	}
	if !usernameCharset.MatchString(username) {
		errs = append(errs, "Username can only contain letters, numbers, and underscores")
	}
	return result(errs)
}

// Email checks presence and address shape.
func Email(email string) Result {
	if email == "" {
		return result([]string{"Email is required"})
	}
	if err := shape.Var(email, "email"); err != nil {
		return result([]string{"Please provide a valid email address"})
	}
	return result(nil)
}

// Password checks presence, length and character classes.
func Password(password string) Result {
	if password == "" {
		return result([]string{"Password is required"})
	}

	var errs []string
	if utf8.RuneCountInString(password) < passwordMin {
		errs = append(errs, "Password must be at least 8 characters long")
	}
	if !hasUpper.MatchString(password) {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if !hasLower.MatchString(password) {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if !hasDigit.MatchString(password) {
		errs = append(errs, "Password must contain at least one number")
	}
	if !strings.ContainsAny(password, PasswordSymbols) {
		errs = append(errs, "Password must contain at least one special character")
	}
	return result(errs)
}

// Role accepts an empty value (the default role applies) or one of user,
// admin, artisan. Whether a caller may obtain admin is a policy decision made
// by the account service, not here.
func Role(role string) Result {
	switch domain.Role(role) {
	case "", domain.RoleUser, domain.RoleAdmin, domain.RoleArtisan:
		return result(nil)
	default:
		return result([]string{"Invalid role specified"})
	}
}

// Registration aggregates username, email, password and role checks.
func Registration(username, email, password, role string) Result {
	var errs []string
	for _, r := range []Result{Username(username), Email(email), Password(password), Role(role)} {
		errs = append(errs, r.Errors...)
	}
	return result(errs)
}

// Login only checks presence; credential shape is never revealed at login.
func Login(email, password string) Result {
	var errs []string
	if email == "" {
		errs = append(errs, "Email is required")
	}
	if password == "" {
		errs = append(errs, "Password is required")
	}
	return result(errs)
}

// Sanitize trims surrounding whitespace and strips angle brackets.
func Sanitize(s string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(s))
}

// NormalizeEmail sanitizes and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(Sanitize(email))
}
