package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/culturecart/accounts-api/internal/api/metrics"
	"github.com/culturecart/accounts-api/internal/core/domain"
	"github.com/culturecart/accounts-api/internal/core/ports"
	"github.com/culturecart/accounts-api/internal/pkg/validation"
)

const defaultMaxGalleryFiles = 10

var _ ports.ProfileService = (*ProfileService)(nil)

// ProfileService serves an account's own profile and the artisan directory.
type ProfileService struct {
	users    ports.UserRepository
	storage  ports.ObjectStorage
	maxFiles int
	log      zerolog.Logger
}

func NewProfileService(users ports.UserRepository, storage ports.ObjectStorage, maxFiles int, log zerolog.Logger) *ProfileService {
	if maxFiles <= 0 {
		maxFiles = defaultMaxGalleryFiles
	}
	return &ProfileService{
		users:    users,
		storage:  storage,
		maxFiles: maxFiles,
		log:      log.With().Str("component", "profile_service").Logger(),
	}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return public(user), nil
}

// Update replaces the whitelisted artisan fields and recomputes the
// completion percentage. A requested role outside {artisan, user} is ignored.
func (s *ProfileService) Update(ctx context.Context, userID string, in ports.ProfileUpdateInput) (*domain.User, error) {
	current, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := domain.ArtisanProfile{
		FirstName:       validation.Sanitize(in.FirstName),
		LastName:        validation.Sanitize(in.LastName),
		Location:        validation.Sanitize(in.Location),
		CraftType:       validation.Sanitize(in.CraftType),
		ExperienceYears: max(in.ExperienceYears, 0),
		Bio:             validation.Sanitize(in.Bio),
		AvatarURL:       in.AvatarURL,
		GalleryImages:   in.GalleryImages,
	}
	if profile.AvatarURL == "" {
		profile.AvatarURL = current.ArtisanProfile.AvatarURL
	}
	if profile.GalleryImages == nil {
		profile.GalleryImages = current.ArtisanProfile.GalleryImages
	}
	profile.CompletedPercent = profile.Completion()

	var role *domain.Role
	if in.Role != "" {
		if r := domain.Role(in.Role); r.SelfAssignable() {
			role = &r
		} else {
			s.log.Warn().Str("user_id", userID).Str("requested_role", in.Role).Msg("profile role change ignored")
		}
	}

	updated, err := s.users.UpdateProfile(ctx, userID, profile, role)
	if err != nil {
		return nil, err
	}
	return public(updated), nil
}

func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, file ports.UploadFile) (string, *domain.User, error) {
	if file.Content == nil {
		return "", nil, domain.ErrNoFile
	}
	file, err := sniffImage(file)
	if err != nil {
		return "", nil, err
	}
	url, err := s.put(ctx, "avatar", file)
	if err != nil {
		return "", nil, err
	}

	user, err := s.users.SetAvatar(ctx, userID, url)
	if err != nil {
		return "", nil, err
	}
	return url, public(user), nil
}

// UploadGallery stores every file and appends their URLs to the gallery. The
// whole batch is rejected before anything is stored if a file is not an
// image by declared or detected type.
func (s *ProfileService) UploadGallery(ctx context.Context, userID string, files []ports.UploadFile) ([]string, *domain.User, error) {
	if len(files) == 0 {
		return nil, nil, domain.ErrNoFiles
	}
	if len(files) > s.maxFiles {
		return nil, nil, domain.ErrTooManyFiles
	}
	checked := make([]ports.UploadFile, 0, len(files))
	for _, f := range files {
		f, err := sniffImage(f)
		if err != nil {
			return nil, nil, err
		}
		checked = append(checked, f)
	}

	urls := make([]string, 0, len(files))
	for _, f := range checked {
		url, err := s.put(ctx, "gallery", f)
		if err != nil {
			return nil, nil, err
		}
		urls = append(urls, url)
	}

	user, err := s.users.AppendGallery(ctx, userID, urls)
	if err != nil {
		return nil, nil, err
	}
	return urls, public(user), nil
}

func (s *ProfileService) Artisans(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.ListByRole(ctx, domain.RoleArtisan)
	if err != nil {
		return nil, err
	}
	for i, u := range users {
		users[i] = public(u)
	}
	return users, nil
}

// put stores a file already passed through sniffImage.
func (s *ProfileService) put(ctx context.Context, kind string, f ports.UploadFile) (string, error) {
	url, err := s.storage.Put(ctx, f.Filename, f.Content, f.Size, f.ContentType)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(kind, "error").Inc()
		return "", err
	}
	metrics.UploadsTotal.WithLabelValues(kind, "ok").Inc()
	return url, nil
}
