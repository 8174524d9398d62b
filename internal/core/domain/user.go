package domain

import (
	"math"
	"time"
)

// Role is the coarse permission tier of an account.
type Role string

const (
	RoleUser    Role = "user"
	RoleArtisan Role = "artisan"
	RoleAdmin   Role = "admin"
	// RoleBanned suspends the account. The auth gate and login paths reject it
	// regardless of what a previously issued token claims.
	RoleBanned Role = "banned"
)

// Roles lists every value a stored account role may take.
var Roles = []Role{RoleUser, RoleArtisan, RoleAdmin, RoleBanned}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// SelfAssignable reports whether an account may switch itself to r through the
// profile update endpoint.
func (r Role) SelfAssignable() bool {
	return r == RoleArtisan || r == RoleUser
}

// ArtisanProfile holds the optional descriptive fields of an artisan account.
type ArtisanProfile struct {
	FirstName        string   `json:"firstName"        bson:"first_name"`
	LastName         string   `json:"lastName"         bson:"last_name"`
	Location         string   `json:"location"         bson:"location"`
	CraftType        string   `json:"craftType"        bson:"craft_type"`
	ExperienceYears  int      `json:"experienceYears"  bson:"experience_years"`
	Bio              string   `json:"bio"              bson:"bio"`
	AvatarURL        string   `json:"avatarUrl"        bson:"avatar_url"`
	GalleryImages    []string `json:"galleryImages"    bson:"gallery_images"`
	CompletedPercent int      `json:"completedPercent" bson:"completed_percent"`
}

// trackedProfileFields is the denominator of the completion percentage.
const trackedProfileFields = 5

// Completion returns round(100 * filled / 5) over first name, last name,
// location, craft type and bio.
func (p ArtisanProfile) Completion() int {
	filled := 0
	for _, v := range []string{p.FirstName, p.LastName, p.Location, p.CraftType, p.Bio} {
		if v != "" {
			filled++
		}
	}
	return int(math.Round(100 * float64(filled) / trackedProfileFields))
}

// User models a marketplace account.
type User struct {
	ID             string         `json:"id"`
	Username       string         `json:"username"`
	Email          string         `json:"email"`
	PasswordHash   string         `json:"-"`
	Role           Role           `json:"role"`
	ArtisanProfile ArtisanProfile `json:"artisanProfile"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Banned reports whether the account is suspended.
func (u *User) Banned() bool {
	return u.Role == RoleBanned
}

// Identity is the normalized caller attached to a request by the auth gate.
type Identity struct {
	ID             string         `json:"id"`
	Username       string         `json:"username"`
	Email          string         `json:"email"`
	Role           Role           `json:"role"`
	ArtisanProfile ArtisanProfile `json:"artisanProfile"`
}

// IdentityOf projects a live user record onto an Identity.
func IdentityOf(u *User) Identity {
	return Identity{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		ArtisanProfile: u.ArtisanProfile,
	}
}
