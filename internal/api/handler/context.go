package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/culturecart/accounts-api/internal/api/middleware"
	"github.com/culturecart/accounts-api/internal/core/domain"
)

// identity returns the caller attached by the auth gate. A handler mounted
// without the gate fails closed with domain.ErrNoToken.
func identity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return domain.Identity{}, domain.ErrNoToken
	}
	return id, nil
}

// clientInfo describes the caller for the audit trail and login throttle.
func clientInfo(c echo.Context) domain.ClientInfo {
	return domain.ClientInfo{
		UserAgent: c.Request().UserAgent(),
		IP:        c.RealIP(),
	}
}

// bind decodes the request body and runs struct validation when a validator
// is installed.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(400, "Invalid request body").SetInternal(err)
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
