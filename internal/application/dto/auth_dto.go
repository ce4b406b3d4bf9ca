package dto

import (
	"time"

	"github.com/turtacn/jwtauth/internal/domain/models"
)

// LoginRequest is the body of POST /api/authenticate.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" validate:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=3,max=100" validate:"required,min=3,max=100"`
}

// ClientInfo describes the caller, for auditing and throttling.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// TokenResponse is returned after a successful login.
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// NewTokenResponse converts an issued token, computing expires_in relative to now.
func NewTokenResponse(t *models.IssuedToken, now time.Time) *TokenResponse {
	return &TokenResponse{
		Token:     t.Token,
		TokenType: t.TokenType,
		ExpiresIn: t.ExpiresIn(now),
	}
}
