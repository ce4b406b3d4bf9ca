// Package constants defines system-wide constants for the jwtauth service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ServiceName is the name reported to logs, traces and metrics.
const ServiceName = "jwtauth"

// ================================================================================
// Token Constants
// ================================================================================

const (
	// AuthorizationHeader is the HTTP header carrying the bearer token
	AuthorizationHeader = "Authorization"

	// AuthorizationMetadataKey is the gRPC metadata key carrying the bearer token
	AuthorizationMetadataKey = "authorization"

	// BearerPrefix is the case-sensitive prefix in front of the token, one trailing space included
	BearerPrefix = "Bearer "

	// TokenTypeBearer is reported to clients alongside issued tokens
	TokenTypeBearer = "Bearer"

	// AuthoritiesClaim is the claim holding the comma-joined role names
	AuthoritiesClaim = "auth"

	// AuthoritiesSeparator joins role names inside AuthoritiesClaim
	AuthoritiesSeparator = ","

	// SigningAlgorithm is the only accepted JWS algorithm
	SigningAlgorithm = "HS512"

	// MinSigningKeyBytes is the minimum HMAC-SHA512 key length
	MinSigningKeyBytes = 64
)

// ================================================================================
// Token Lifetime Constants
// ================================================================================

const (
	// DefaultTokenValidity is the lifetime used when configuration does not set one (1 day)
	DefaultTokenValidity = 24 * time.Hour

	// DefaultTokenValiditySeconds mirrors DefaultTokenValidity for configuration defaults
	DefaultTokenValiditySeconds = 86400
)

// ================================================================================
// Role Constants
// ================================================================================

const (
	// RoleUser is granted to every account created through signup
	RoleUser = "ROLE_USER"

	// RoleAdmin is granted to administrative accounts
	RoleAdmin = "ROLE_ADMIN"

	// RoleAnonymous is the policy subject for requests without a principal
	RoleAnonymous = "anonymous"
)

// ================================================================================
// Rate Limiting Constants
// ================================================================================

const (
	// LoginRateLimitAttempts is the default number of login attempts per window
	LoginRateLimitAttempts = 10

	// LoginRateLimitWindow is the default login throttling window
	LoginRateLimitWindow = time.Minute

	// RateLimitKeyPrefix prefixes every Redis rate limit counter
	RateLimitKeyPrefix = "jwtauth:ratelimit:"
)

// ================================================================================
// Audit Event Type Constants
// ================================================================================

// AuditEventType represents different types of auditable events
type AuditEventType string

const (
	// AuditEventLoginSucceeded is recorded when a token is issued after password verification
	AuditEventLoginSucceeded AuditEventType = "login_succeeded"

	// AuditEventLoginFailed is recorded when password verification or account checks fail
	AuditEventLoginFailed AuditEventType = "login_failed"

	// AuditEventSignup is recorded when a new account is created
	AuditEventSignup AuditEventType = "signup"
)

// AuditSink selects where audit events are written
type AuditSink string

const (
	AuditSinkNone     AuditSink = "none"
	AuditSinkDatabase AuditSink = "database"
	AuditSinkKafka    AuditSink = "kafka"
)

// ================================================================================
// Secret Source Constants
// ================================================================================

// SecretSource selects where the signing secret is read from
type SecretSource string

const (
	// SecretSourceConfig reads jwt.secret from configuration
	SecretSourceConfig SecretSource = "config"

	// SecretSourceVault reads the secret from a Vault KV v2 mount
	SecretSourceVault SecretSource = "vault"
)

// ================================================================================
// Context Key Constants
// ================================================================================

// ContextKey represents keys used in context.Context
type ContextKey string

const (
	// ContextKeyRequestID is the key for request ID in context
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTraceID is the key for distributed trace ID in context
	ContextKeyTraceID ContextKey = "trace_id"
)

const (
	// GinKeyPrincipal is the gin.Context key holding the authenticated principal
	GinKeyPrincipal = "principal"

	// GinKeyRequestID is the gin.Context key holding the request id
	GinKeyRequestID = "request_id"

	// HeaderRequestID carries the request id in and out
	HeaderRequestID = "X-Request-ID"
)
