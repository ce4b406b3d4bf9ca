package service

import (
	"context"
	"time"

	"github.com/turtacn/jwtauth/internal/domain/models"
)

//go:generate mockery --name TokenCodec --output mocks --outpkg mocks
// TokenCodec turns identities into signed bearer tokens and back.
type TokenCodec interface {
	// Encode signs {sub, auth, exp} with the process signing key.
	// The error only reports a signing failure inside the JWT library.
	Encode(subject string, roles []string, validity time.Duration) (string, error)

	// Issue encodes a token with the configured validity.
	Issue(subject string, roles []string) (*models.IssuedToken, error)

	// Decode verifies the signature first and then returns the claims.
	// Failures are one of errors.ErrBadSignature, ErrTokenExpired, ErrUnsupportedToken or ErrMalformedToken.
	Decode(token string) (*models.Claims, error)

	// Validate reports whether Decode succeeds, logging the failure kind when it does not.
	Validate(ctx context.Context, token string) bool
}

// PasswordEncoder hashes and verifies account passwords.
type PasswordEncoder interface {
	Encode(rawPassword string) (string, error)
	Matches(rawPassword, encodedPassword string) bool
}

// UserDetailsService loads the identity data the login flow verifies against.
type UserDetailsService interface {
	// LoadUserByUsername returns the active user with its roles.
	// It returns errors.ErrUserNotFound or errors.ErrUserDeactivated.
	LoadUserByUsername(ctx context.Context, username string) (*models.UserDetails, error)
}

// RateLimitDimension defines the logical type of rate limiting.
type RateLimitDimension string

const (
	RateLimitDimensionUser RateLimitDimension = "user" // Per-username login attempts
	RateLimitDimensionIP   RateLimitDimension = "ip"   // Per-client-IP login attempts
)

// RateLimitService defines the interface for rate limiting operations.
type RateLimitService interface {
	// Allow checks if a request is allowed under the rate limit policy for a given dimension and key.
	// It returns whether the request is allowed, the number of remaining requests, and the time when the limit resets.
	Allow(ctx context.Context, dimension RateLimitDimension, key string) (allowed bool, remaining int, resetAt time.Time, err error)

	// Reset clears the bucket for a given dimension and key.
	Reset(ctx context.Context, dimension RateLimitDimension, key string) error
}

// AuditService defines the interface for logging security-sensitive audit events.
type AuditService interface {
	// LogEvent records an audit event.
	LogEvent(ctx context.Context, event *models.AuditEvent) error
}

// SecretSource supplies the base64-encoded signing secret at startup.
type SecretSource interface {
	FetchSigningSecret(ctx context.Context) (string, error)
}

// PolicyService decides whether a set of roles may call a route.
type PolicyService interface {
	// Enforce evaluates the request against the policy. An empty role list is evaluated as anonymous.
	Enforce(roles []string, path, method string) (bool, error)
}
