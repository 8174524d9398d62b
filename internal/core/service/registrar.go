package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/culturecart/accounts-api/internal/api/metrics"
	"github.com/culturecart/accounts-api/internal/core/domain"
	"github.com/culturecart/accounts-api/internal/core/ports"
)

// registrar creates accounts. It is shared by public registration,
// login-or-register, admin account creation and bootstrap seeding.
type registrar struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

type newAccount struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
	Source   string
}

// create pre-checks for duplicates so the client gets a precise message, then
// inserts. The store's unique index is authoritative when two requests race
// past the pre-check.
func (r *registrar) create(ctx context.Context, in newAccount) (*domain.User, error) {
	existing, err := r.users.FindByEmailOrUsername(ctx, in.Email, in.Username)
	switch {
	case err == nil:
		if existing.Email == in.Email {
			return nil, domain.ErrEmailTaken
		}
		return nil, domain.ErrUsernameTaken
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	hash, err := r.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	created, err := r.users.Create(ctx, &domain.User{
		Username:       in.Username,
		Email:          in.Email,
		PasswordHash:   hash,
		Role:           in.Role,
		ArtisanProfile: domain.ArtisanProfile{GalleryImages: []string{}},
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(in.Source, string(created.Role)).Inc()
	r.log.Info().
		Str("user_id", created.ID).
		Str("role", string(created.Role)).
		Str("source", in.Source).
		Msg("account created")
	return created, nil
}

// public strips the credential hash before a user leaves the service layer.
func public(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}
