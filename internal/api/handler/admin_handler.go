package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/culturecart/accounts-api/internal/core/ports"
)

// AdminHandler serves /api/admin.
type AdminHandler struct {
	auth  ports.AuthService
	admin ports.AdminService
}

func NewAdminHandler(auth ports.AuthService, admin ports.AdminService) *AdminHandler {
	return &AdminHandler{auth: auth, admin: admin}
}

// Login authenticates an administrator.
//
// @Summary      Admin login
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Admin credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Router       /api/admin/login [post]
func (h *AdminHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.auth.AdminLogin(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Client:   clientInfo(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Success: true, Msg: "Admin login successful", Token: res.Token, User: res.User})
}

// Me returns the calling administrator.
//
// @Summary      Current admin
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  adminResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/admin/me [get]
func (h *AdminHandler) Me(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	admin, err := h.admin.Me(c.Request().Context(), who.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminResponse{Success: true, Admin: admin})
}

// Logout records the admin logout.
//
// @Summary      Admin logout
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /api/admin/logout [post]
func (h *AdminHandler) Logout(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.auth.AdminLogout(c.Request().Context(), who, clientInfo(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Msg: "Admin logged out successfully"})
}

// Dashboard returns per-role account counts and the latest sessions.
//
// @Summary      Admin dashboard
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /api/admin/dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	dash, err := h.admin.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{Success: true, Dashboard: dash})
}

// CreateUser creates an account with any role, admin included.
//
// @Summary      Create account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAccountRequest  true  "Account details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /api/admin/users [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createAccountRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.admin.CreateAccount(c.Request().Context(), ports.CreateAccountInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{Success: true, Msg: "User created successfully", User: user})
}

// SetRole changes another account's role. Setting "banned" suspends it.
//
// @Summary      Change role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "User ID"
// @Param        body  body      setRoleRequest  true  "New role"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/admin/users/{id}/role [put]
func (h *AdminHandler) SetRole(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}

	var req setRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.admin.SetRole(c.Request().Context(), who, c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{Success: true, Msg: "Role updated successfully", User: user})
}
