// Package memory provides process-local implementations of the repository
// ports. They back the service and router tests and honour the same
// contracts as the MongoDB repositories: unique email and username, no hash
// on reads outside FindByEmail, domain.ErrUserNotFound on misses.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/culturecart/accounts-api/internal/core/domain"
	"github.com/culturecart/accounts-api/internal/core/ports"
)

var (
	_ ports.UserRepository    = (*UserRepository)(nil)
	_ ports.SessionRepository = (*SessionRepository)(nil)
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func clone(u *domain.User, withHash bool) *domain.User {
	c := *u
	c.ArtisanProfile.GalleryImages = slices.Clone(u.ArtisanProfile.GalleryImages)
	if c.ArtisanProfile.GalleryImages == nil {
		c.ArtisanProfile.GalleryImages = []string{}
	}
	if !withHash {
		c.PasswordHash = ""
	}
	return &c
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
		if u.Username == user.Username {
			return nil, domain.ErrUsernameTaken
		}
	}

	stored := clone(user, true)
	stored.ID = primitive.NewObjectID().Hex()
	r.users[stored.ID] = stored
	return clone(stored, true), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(u, false), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return clone(u, true), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByEmailOrUsername(_ context.Context, email, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email || u.Username == username {
			return clone(u, false), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) UpdateProfile(_ context.Context, id string, profile domain.ArtisanProfile, role *domain.Role) (*domain.User, error) {
	return r.mutate(id, func(u *domain.User) {
		u.ArtisanProfile = profile
		u.ArtisanProfile.GalleryImages = slices.Clone(profile.GalleryImages)
		if role != nil {
			u.Role = *role
		}
	})
}

func (r *UserRepository) SetAvatar(_ context.Context, id, url string) (*domain.User, error) {
	return r.mutate(id, func(u *domain.User) { u.ArtisanProfile.AvatarURL = url })
}

func (r *UserRepository) AppendGallery(_ context.Context, id string, urls []string) (*domain.User, error) {
	return r.mutate(id, func(u *domain.User) {
		u.ArtisanProfile.GalleryImages = append(u.ArtisanProfile.GalleryImages, urls...)
	})
}

func (r *UserRepository) SetRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	return r.mutate(id, func(u *domain.User) { u.Role = role })
}

func (r *UserRepository) mutate(id string, fn func(*domain.User)) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return clone(u, false), nil
}

func (r *UserRepository) CountByRole(_ context.Context) (domain.RoleCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var c domain.RoleCounts
	for _, u := range r.users {
		switch u.Role {
		case domain.RoleUser:
			c.Users++
		case domain.RoleArtisan:
			c.Artisans++
		case domain.RoleAdmin:
			c.Admins++
		case domain.RoleBanned:
			c.Banned++
		}
		c.Total++
	}
	return c, nil
}

func (r *UserRepository) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.User{}
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, clone(u, false))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// SessionRepository keeps the audit trail in memory and joins owners from
// users on read.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions []domain.Session
	users    *UserRepository
}

func NewSessionRepository(users *UserRepository) *SessionRepository {
	return &SessionRepository{users: users}
}

func (r *SessionRepository) Insert(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.ID = primitive.NewObjectID().Hex()
	r.sessions = append(r.sessions, *s)
	return nil
}

func (r *SessionRepository) Recent(ctx context.Context, limit int) ([]domain.SessionView, error) {
	r.mu.RLock()
	sessions := slices.Clone(r.sessions)
	r.mu.RUnlock()

	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].CreatedAt.After(sessions[j].CreatedAt) })
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}

	views := make([]domain.SessionView, 0, len(sessions))
	for _, s := range sessions {
		view := domain.SessionView{Session: s}
		if u, err := r.users.FindByID(ctx, s.UserID); err == nil {
			view.User = &domain.SessionOwner{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
		}
		views = append(views, view)
	}
	return views, nil
}

// All returns every recorded session in insertion order.
func (r *SessionRepository) All() []domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.sessions)
}
