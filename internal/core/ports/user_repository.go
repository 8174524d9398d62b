package ports

import (
	"context"

	"github.com/culturecart/accounts-api/internal/core/domain"
)

// UserRepository is the credential store.
//
// Create must report a uniqueness violation as domain.ErrEmailTaken or
// domain.ErrUsernameTaken; that result is authoritative over any prior lookup.
// FindByID never returns the password hash. Lookups that match nothing return
// domain.ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByEmailOrUsername returns the first account holding either value.
	FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error)
	// UpdateProfile replaces the artisan profile and, when role is non-nil,
	// the role. It returns the updated record without the hash.
	UpdateProfile(ctx context.Context, id string, profile domain.ArtisanProfile, role *domain.Role) (*domain.User, error)
	SetAvatar(ctx context.Context, id, url string) (*domain.User, error)
	AppendGallery(ctx context.Context, id string, urls []string) (*domain.User, error)
	SetRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	CountByRole(ctx context.Context) (domain.RoleCounts, error)
	// ListByRole returns every account holding role, without hashes.
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
}
