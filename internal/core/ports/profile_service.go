package ports

import (
	"context"

	"github.com/culturecart/accounts-api/internal/core/domain"
)

// ProfileUpdateInput is the whitelisted set of fields accepted by PUT /me.
// An empty AvatarURL or nil GalleryImages keeps the stored value.
type ProfileUpdateInput struct {
	FirstName       string
	LastName        string
	Location        string
	CraftType       string
	ExperienceYears int
	Bio             string
	AvatarURL       string
	GalleryImages   []string
	Role            string
}

// ProfileService serves the authenticated account's own profile.
type ProfileService interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, in ProfileUpdateInput) (*domain.User, error)
	UploadAvatar(ctx context.Context, userID string, file UploadFile) (string, *domain.User, error)
	UploadGallery(ctx context.Context, userID string, files []UploadFile) ([]string, *domain.User, error)
	// Artisans is the public artisan directory.
	Artisans(ctx context.Context) ([]*domain.User, error)
}
