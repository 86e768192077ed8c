package dto

import (
	"time"

	"github.com/noah-isme/campus-api/internal/models"
)

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"required,oneof=student teacher"`
	Name     string `json:"name" validate:"omitempty,max=255"`
}

// LoginRequest is the payload for exchanging credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest carries optional profile changes.
type UpdateProfileRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=255"`
	Email        *string `json:"email" validate:"omitempty,email"`
	ProfilePhoto *string `json:"profile_photo" validate:"omitempty,url"`
}

// ChangePasswordRequest replaces the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Name         string    `json:"name"`
	ProfilePhoto string    `json:"profile_photo"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserLite summarizes a user inside other resources.
type UserLite struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	ProfilePhoto string `json:"profile_photo,omitempty"`
}

// AuthResponse is returned after register and login.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// NewUserResponse converts a model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:           model.ID,
		Username:     model.Username,
		Email:        model.Email,
		Role:         model.Role,
		Name:         model.Name,
		ProfilePhoto: model.ProfilePhoto,
		CreatedAt:    model.CreatedAt,
	}
}

// NewUserLite converts a model into its summary form.
func NewUserLite(model models.User) UserLite {
	return UserLite{
		ID:           model.ID,
		Username:     model.Username,
		Email:        model.Email,
		Name:         model.Name,
		ProfilePhoto: model.ProfilePhoto,
	}
}

// NewUserLiteSlice converts a slice of users.
func NewUserLiteSlice(users []models.User) []UserLite {
	responses := make([]UserLite, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserLite(user))
	}
	return responses
}
