package user

import (
	"errors"
	"time"

	"github.com/penline/core/internal/models"
)

type RegisterDTO struct {
	Name     string `json:"name"     binding:"required,max=50"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginDTO struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileDTO struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
	Bio    *string `json:"bio"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	Bio       string    `json:"bio"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type authResponse struct {
	Token string        `json:"token"`
	User  *userResponse `json:"user"`
}

func toResponse(u *models.UserModel) *userResponse {
	return &userResponse{
		ID: u.ID, Name: u.Name, Email: u.Email,
		Avatar: u.Avatar, Bio: u.Bio, Role: u.Role,
		CreatedAt: u.CreatedAt,
	}
}

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errWrongPassword      = errors.New("wrong password")
	errPasswordSameAsOld  = errors.New("password same as old")
)
