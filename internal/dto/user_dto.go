package dto

import (
	"time"

	"github.com/noah-isme/nemesis-api/internal/models"
)

// RegisterRequest captures sign-up payloads.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email,max=160"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest captures credential payloads.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned after a successful login.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// UserResponse is the account view shown to its owner and to admins.
type UserResponse struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	ArtistStatus    string     `json:"artistStatus"`
	ArtistStatement string     `json:"artistStatement,omitempty"`
	PortfolioURL    string     `json:"portfolioUrl,omitempty"`
	Bio             string     `json:"bio"`
	AvatarURL       string     `json:"avatarUrl"`
	Suspended       bool       `json:"suspended"`
	SuspendedReason string     `json:"suspendedReason,omitempty"`
	SuspendedAt     *time.Time `json:"suspendedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// PublicProfileResponse is the account view shown to everybody else.
type PublicProfileResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	ArtistStatus string    `json:"artistStatus"`
	PortfolioURL string    `json:"portfolioUrl,omitempty"`
	Bio          string    `json:"bio"`
	AvatarURL    string    `json:"avatarUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UpdateProfileRequest captures partial profile updates.
type UpdateProfileRequest struct {
	Name *string `json:"name" validate:"omitempty,min=2,max=120"`
	Bio  *string `json:"bio" validate:"omitempty,max=2000"`
}

// ArtistApplicationRequest captures a request to become a verified seller.
type ArtistApplicationRequest struct {
	Statement    string `json:"statement" validate:"required,min=20,max=5000"`
	PortfolioURL string `json:"portfolioUrl" validate:"required,url,max=512"`
}

// NewUserResponse converts a user model into its private view.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            user.Role,
		ArtistStatus:    user.ArtistStatus,
		ArtistStatement: user.ArtistStatement,
		PortfolioURL:    user.PortfolioURL,
		Bio:             user.Bio,
		AvatarURL:       user.AvatarURL,
		Suspended:       user.Suspended,
		SuspendedReason: user.SuspendedReason,
		SuspendedAt:     user.SuspendedAt,
		CreatedAt:       user.CreatedAt,
	}
}

// NewPublicProfileResponse converts a user model into its public view.
func NewPublicProfileResponse(user models.User) PublicProfileResponse {
	return PublicProfileResponse{
		ID:           user.ID,
		Name:         user.Name,
		Role:         user.Role,
		ArtistStatus: user.ArtistStatus,
		PortfolioURL: user.PortfolioURL,
		Bio:          user.Bio,
		AvatarURL:    user.AvatarURL,
		CreatedAt:    user.CreatedAt,
	}
}
