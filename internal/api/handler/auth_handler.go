package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/culturecart/accounts-api/internal/core/ports"
)

// AccountHandler serves the public account endpoints under /api/users.
type AccountHandler struct {
	auth ports.AuthService
}

func NewAccountHandler(auth ports.AuthService) *AccountHandler {
	return &AccountHandler{auth: auth}
}

// Register creates a new account and signs it in.
//
// @Summary      Register a new account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/users/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.auth.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{
		Success: true,
		Msg:     "User registered successfully",
		Token:   res.Token,
		User:    res.User,
	})
}

// Login authenticates an account with email and password.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Router       /api/users/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Client:   clientInfo(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Success: true, Msg: "Login successful", Token: res.Token, User: res.User})
}

// LoginOrRegister signs in an existing account or creates one on first
// contact.
//
// @Summary      Login or register
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginOrRegisterRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /api/users/login-or-register [post]
func (h *AccountHandler) LoginOrRegister(c echo.Context) error {
	var req loginOrRegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.auth.LoginOrRegister(c.Request().Context(), ports.LoginOrRegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Client:   clientInfo(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Success: true, Msg: "Login successful", Token: res.Token, User: res.User})
}

// Logout records the logout. The bearer token stays valid until it expires.
//
// @Summary      Logout
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /api/users/logout [post]
func (h *AccountHandler) Logout(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.Request().Context(), who, clientInfo(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Msg: "Logged out successfully"})
}
