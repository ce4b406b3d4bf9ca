// Package errors defines custom error types and error handling utilities for the jwtauth service.
// This package provides structured error types that map to stable error codes and HTTP status codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ================================================================================
// Error Codes
// ================================================================================

const (
	ErrCodeInvalidConfig      = "invalid_config"
	ErrCodeInternal           = "internal_error"
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeForbidden          = "forbidden"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeRateLimitExceeded  = "rate_limit_exceeded"
	ErrCodeServiceUnavailable = "service_unavailable"

	// Token failure codes. They double as metric labels, keep them stable.
	ErrCodeBadSignature     = "bad_signature"
	ErrCodeTokenExpired     = "token_expired"
	ErrCodeUnsupportedToken = "unsupported_token"
	ErrCodeMalformedToken   = "malformed_token"

	ErrCodeBadCredentials    = "bad_credentials"
	ErrCodeUserNotFound      = "user_not_found"
	ErrCodeUserDeactivated   = "user_deactivated"
	ErrCodeUserAlreadyExists = "user_already_exists"
)

// ================================================================================
// AppError
// ================================================================================

// AppError represents a structured application error
type AppError struct {
	Code        string
	HTTPStatus  int
	Message     string
	Description string
	Details     map[string]string
	cause       error
}

// NewError creates a new AppError with the specified parameters
func NewError(code string, httpStatus int, message, description string) *AppError {
	return &AppError{
		Code:        code,
		HTTPStatus:  httpStatus,
		Message:     message,
		Description: description,
	}
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithError returns a copy of e carrying err as its cause.
func (e *AppError) WithError(err error) *AppError {
	cp := e.clone()
	cp.cause = err
	return cp
}

// WithDetails returns a copy of e with details merged in.
func (e *AppError) WithDetails(details map[string]string) *AppError {
	cp := e.clone()
	if cp.Details == nil {
		cp.Details = make(map[string]string, len(details))
	}
	for k, v := range details {
		cp.Details[k] = v
	}
	return cp
}

// WithDescription returns a copy of e with a new description.
func (e *AppError) WithDescription(description string) *AppError {
	cp := e.clone()
	cp.Description = description
	return cp
}

func (e *AppError) clone() *AppError {
	cp := *e
	if e.Details != nil {
		cp.Details = make(map[string]string, len(e.Details))
		for k, v := range e.Details {
			cp.Details[k] = v
		}
	}
	return &cp
}

// ================================================================================
// Predefined Errors
// ================================================================================

var (
	// ErrInvalidConfig is fatal and only raised while the process starts.
	ErrInvalidConfig = NewError(ErrCodeInvalidConfig, http.StatusInternalServerError,
		"invalid configuration", "The service configuration is invalid.")

	ErrInternalServer = NewError(ErrCodeInternal, http.StatusInternalServerError,
		"internal server error", "The server encountered an unexpected condition.")
	ErrInvalidRequest = NewError(ErrCodeInvalidRequest, http.StatusBadRequest,
		"invalid request", "The request is missing a required parameter or is otherwise malformed.")
	ErrUnauthorized = NewError(ErrCodeUnauthorized, http.StatusUnauthorized,
		"unauthorized", "Full authentication is required to access this resource.")
	ErrForbidden = NewError(ErrCodeForbidden, http.StatusForbidden,
		"forbidden", "The authenticated principal is not allowed to access this resource.")
	ErrNotFound = NewError(ErrCodeNotFound, http.StatusNotFound,
		"not found", "The requested resource was not found.")
	ErrRateLimitExceeded = NewError(ErrCodeRateLimitExceeded, http.StatusTooManyRequests,
		"rate limit exceeded", "Too many requests, please try again later.")
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, http.StatusServiceUnavailable,
		"service unavailable", "A dependency is currently unavailable.")

	ErrBadSignature = NewError(ErrCodeBadSignature, http.StatusUnauthorized,
		"invalid token signature", "The token signature or algorithm does not match.")
	ErrTokenExpired = NewError(ErrCodeTokenExpired, http.StatusUnauthorized,
		"token expired", "The token expiration time has passed.")
	ErrUnsupportedToken = NewError(ErrCodeUnsupportedToken, http.StatusUnauthorized,
		"unsupported token", "The token header declares an unsigned or unknown algorithm.")
	ErrMalformedToken = NewError(ErrCodeMalformedToken, http.StatusUnauthorized,
		"malformed token", "The token is not a well-formed signed JWT.")

	ErrBadCredentials = NewError(ErrCodeBadCredentials, http.StatusUnauthorized,
		"bad credentials", "The username or password is incorrect.")
	ErrUserNotFound = NewError(ErrCodeUserNotFound, http.StatusNotFound,
		"user not found", "No user exists with the given username.")
	ErrUserDeactivated = NewError(ErrCodeUserDeactivated, http.StatusUnauthorized,
		"user deactivated", "The account is not activated.")
	ErrUserAlreadyExists = NewError(ErrCodeUserAlreadyExists, http.StatusConflict,
		"user already exists", "An account with this username is already registered.")
)

// ================================================================================
// Helpers
// ================================================================================

// New returns a plain error, mirroring the standard library.
func New(text string) error {
	return stderrors.New(text)
}

// Is mirrors errors.Is from the standard library.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As mirrors errors.As from the standard library.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// AsAppError extracts the AppError from err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the AppError code in err's chain, or ErrCodeInternal.
func CodeOf(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsTokenError reports whether err is one of the four token failure kinds.
func IsTokenError(err error) bool {
	return Is(err, ErrBadSignature) || Is(err, ErrTokenExpired) ||
		Is(err, ErrUnsupportedToken) || Is(err, ErrMalformedToken)
}
