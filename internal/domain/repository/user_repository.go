package repository

import (
	"context"

	"github.com/turtacn/jwtauth/internal/domain/models"
)

// UserRepository defines the interface for interacting with account storage.
type UserRepository interface {
	// FindOneWithAuthoritiesByUsername retrieves a user with its authorities preloaded.
	// It returns errors.ErrUserNotFound when no such user exists.
	FindOneWithAuthoritiesByUsername(ctx context.Context, username string) (*models.User, error)

	// ExistsByUsername reports whether the username is taken.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Create persists a new user and links its authorities, creating missing authority rows.
	// It returns errors.ErrUserAlreadyExists when the username is taken.
	Create(ctx context.Context, user *models.User) error

	// AddAuthorities grants additional roles to an existing user.
	AddAuthorities(ctx context.Context, username string, roles ...string) error
}

// AuditRepository stores audit events.
type AuditRepository interface {
	// Save persists an audit event.
	Save(ctx context.Context, event *models.AuditEvent) error

	// FindByUsername returns the most recent events for a user, newest first.
	FindByUsername(ctx context.Context, username string, limit int) ([]*models.AuditEvent, error)
}
