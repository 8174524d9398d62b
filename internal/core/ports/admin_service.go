package ports

import (
	"context"

	"github.com/culturecart/accounts-api/internal/core/domain"
)

// Dashboard is the admin overview.
type Dashboard struct {
	Stats          domain.RoleCounts    `json:"stats"`
	RecentSessions []domain.SessionView `json:"recentSessions"`
}

// CreateAccountInput is an admin-initiated account creation. Unlike public
// registration it may request the admin role.
type CreateAccountInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// AdminService backs the admin-only endpoints.
type AdminService interface {
	Me(ctx context.Context, adminID string) (*domain.User, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	CreateAccount(ctx context.Context, in CreateAccountInput) (*domain.User, error)
	SetRole(ctx context.Context, actor domain.Identity, userID, role string) (*domain.User, error)
}
