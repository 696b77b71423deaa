package dto

import (
	"time"

	"github.com/devhire/project-marketplace-api/internal/models"
)

// UserDTO represents a user in API responses. The password hash is never
// exposed.
type UserDTO struct {
	ID    uint64          `json:"id"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

// TokenResponse is the login response carrying the bearer token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}
