// Package models defines the domain models for the jwtauth service.
package models

import (
	"time"
)

// User is a registered account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID        uint   `json:"-" gorm:"primaryKey;column:user_id"`
	Username  string `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Password  string `json:"-" gorm:"size:100;not null"`
	Nickname  string `json:"nickname" gorm:"size:50"`
	Activated bool   `json:"activated" gorm:"not null"`

	// Authorities are the roles granted to the user, joined through the user_authority table.
	Authorities []Authority `json:"authorities" gorm:"many2many:user_authority;joinForeignKey:UserID;joinReferences:AuthorityName"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default table name.
func (User) TableName() string {
	return "users"
}

// AuthorityNames returns the role names granted to the user.
func (u *User) AuthorityNames() []string {
	names := make([]string, 0, len(u.Authorities))
	for _, a := range u.Authorities {
		names = append(names, a.AuthorityName)
	}
	return names
}

// Authority is a role name such as ROLE_USER.
type Authority struct {
	AuthorityName string `json:"authority_name" gorm:"primaryKey;size:50"`
}

// TableName overrides the default table name.
func (Authority) TableName() string {
	return "authority"
}

// UserDetails is the view of an account the login flow needs.
type UserDetails struct {
	Username     string
	PasswordHash string
	Roles        []string
	Activated    bool
}

// NewUserDetails builds the login view of u.
func NewUserDetails(u *User) *UserDetails {
	return &UserDetails{
		Username:     u.Username,
		PasswordHash: u.Password,
		Roles:        u.AuthorityNames(),
		Activated:    u.Activated,
	}
}
