package dto

import (
	"github.com/turtacn/jwtauth/internal/domain/models"
)

// SignupRequest is the body of POST /api/signup.
type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" validate:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=3,max=100" validate:"required,min=3,max=100"`
	Nickname string `json:"nickname" binding:"required,min=3,max=50" validate:"required,min=3,max=50"`
}

// UserResponse is the public view of an account. The password hash never leaves the service.
type UserResponse struct {
	Username    string   `json:"username"`
	Nickname    string   `json:"nickname"`
	Activated   bool     `json:"activated"`
	Authorities []string `json:"authorities"`
}

// NewUserResponse converts a user model.
func NewUserResponse(u *models.User) *UserResponse {
	return &UserResponse{
		Username:    u.Username,
		Nickname:    u.Nickname,
		Activated:   u.Activated,
		Authorities: u.AuthorityNames(),
	}
}
