package handler

import (
	"github.com/culturecart/accounts-api/internal/core/domain"
	"github.com/culturecart/accounts-api/internal/core/ports"
)

// --- Requests ---

// Field rules for credentials live in the validation package and are applied
// by the services, so registration reports every violation at once.

type registerRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email"    example:"alice@example.com"`
	Password string `json:"password" example:"Abcdef1!"`
	Role     string `json:"role"     example:"user"`
}

type loginRequest struct {
	Email    string `json:"email"    example:"alice@example.com"`
	Password string `json:"password" example:"Abcdef1!"`
}

type loginOrRegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileUpdateRequest struct {
	FirstName       string   `json:"firstName"       validate:"max=100"`
	LastName        string   `json:"lastName"        validate:"max=100"`
	Location        string   `json:"location"        validate:"max=200"`
	CraftType       string   `json:"craftType"       validate:"max=100"`
	ExperienceYears int      `json:"experienceYears" validate:"gte=0,lte=100"`
	Bio             string   `json:"bio"             validate:"max=2000"`
	AvatarURL       string   `json:"avatarUrl"       validate:"max=2048"`
	GalleryImages   []string `json:"galleryImages"   validate:"omitempty,max=50,dive,max=2048"`
	Role            string   `json:"role"`
}

type createAccountRequest struct {
	Username string `json:"username" example:"curator"`
	Email    string `json:"email"    example:"curator@example.com"`
	Password string `json:"password" example:"Abcdef1!"`
	Role     string `json:"role"     example:"admin"`
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required" example:"banned"`
}

// --- Responses ---

type messageResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

type authResponse struct {
	Success bool         `json:"success"`
	Msg     string       `json:"msg"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
}

type userResponse struct {
	Success bool         `json:"success"`
	Msg     string       `json:"msg,omitempty"`
	User    *domain.User `json:"user"`
}

type avatarResponse struct {
	Success bool         `json:"success"`
	Msg     string       `json:"msg"`
	URL     string       `json:"url"`
	User    *domain.User `json:"user"`
}

type galleryResponse struct {
	Success bool         `json:"success"`
	Msg     string       `json:"msg"`
	URLs    []string     `json:"urls"`
	User    *domain.User `json:"user"`
}

type artisansResponse struct {
	Success  bool           `json:"success"`
	Artisans []*domain.User `json:"artisans"`
}

type adminResponse struct {
	Success bool         `json:"success"`
	Admin   *domain.User `json:"admin"`
}

type dashboardResponse struct {
	Success   bool             `json:"success"`
	Dashboard *ports.Dashboard `json:"dashboard"`
}

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Msg     string   `json:"msg"`
	Errors  []string `json:"errors,omitempty"`
}
