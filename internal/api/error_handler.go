package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/culturecart/accounts-api/internal/api/handler"
	"github.com/culturecart/accounts-api/internal/core/domain"
)

// statusError pairs a domain sentinel with its response.
type statusError struct {
	err  error
	code int
	msg  string
}

// Order matters where sentinels wrap one another.
var knownErrors = []statusError{
	{domain.ErrNoToken, http.StatusUnauthorized, "No token provided, authorization denied"},
	{domain.ErrTokenExpired, http.StatusUnauthorized, "Token has expired"},
	{domain.ErrTokenInvalid, http.StatusUnauthorized, "Invalid token"},
	{domain.ErrTokenSubjectGone, http.StatusUnauthorized, "User not found, token invalid"},
	{domain.ErrAccountSuspended, http.StatusForbidden, "Account has been suspended"},

	{domain.ErrMissingCredentials, http.StatusBadRequest, "Please enter all fields"},
	{domain.ErrInvalidCredentials, http.StatusBadRequest, "Invalid credentials"},
	{domain.ErrInvalidAdminCredentials, http.StatusBadRequest, "Invalid admin credentials"},
	{domain.ErrTooManyAttempts, http.StatusTooManyRequests, "Too many failed login attempts, try again later"},
	{domain.ErrEmailTaken, http.StatusBadRequest, "User with that email already exists"},
	{domain.ErrUsernameTaken, http.StatusBadRequest, "Username already taken"},
	{domain.ErrAdminSelfRegistration, http.StatusForbidden, "Admin accounts can only be created by an administrator"},
	{domain.ErrOwnRoleChange, http.StatusBadRequest, "You cannot change your own role"},
	{domain.ErrInvalidRole, http.StatusBadRequest, "Invalid role specified"},
	{domain.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{domain.ErrAdminNotFound, http.StatusNotFound, "Admin not found"},

	{domain.ErrNoFile, http.StatusBadRequest, "No file uploaded"},
	{domain.ErrNoFiles, http.StatusBadRequest, "No files uploaded"},
	{domain.ErrTooManyFiles, http.StatusBadRequest, "Too many files uploaded"},
	{domain.ErrUnsupportedFile, http.StatusBadRequest, "Only image uploads are allowed"},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status and client message.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the envelope {"success": false, "msg": "...", "errors": [...]}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, handler.ErrorResponse{Msg: "Validation failed", Errors: ve.Errors}
	}

	var re *domain.RoleError
	if errors.As(err, &re) {
		names := make([]string, len(re.Required))
		for i, r := range re.Required {
			names[i] = string(r)
		}
		return http.StatusForbidden, handler.ErrorResponse{Msg: "Access denied. Required roles: " + strings.Join(names, ", ")}
	}

	for _, known := range knownErrors {
		if errors.Is(err, known.err) {
			return known.code, handler.ErrorResponse{Msg: known.msg}
		}
	}

	// Echo's own errors (bind failures, 404 from router, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			logUnhandled(log, c, err)
		}
		return he.Code, handler.ErrorResponse{Msg: fmt.Sprintf("%v", he.Message)}
	}

	logUnhandled(log, c, err)
	return http.StatusInternalServerError, handler.ErrorResponse{Msg: "Server error"}
}

func logUnhandled(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
