package models

import "time"

// IssuedToken is a freshly signed bearer token returned by the login flow.
type IssuedToken struct {
	Token     string
	TokenType string
	Subject   string
	Roles     []string
	ExpiresAt time.Time
}

// ExpiresIn returns the remaining lifetime in whole seconds relative to now.
func (t *IssuedToken) ExpiresIn(now time.Time) int64 {
	remaining := t.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int64(remaining / time.Second)
}

// IsExpired checks if the token has expired relative to now.
func (t *IssuedToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
