package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_WithErrorKeepsIdentity(t *testing.T) {
	cause := stderrors.New("boom")
	err := ErrTokenExpired.WithError(cause)

	assert.True(t, Is(err, ErrTokenExpired))
	assert.True(t, Is(err, cause))
	assert.False(t, Is(err, ErrBadSignature))
	assert.Equal(t, "token expired: boom", err.Error())
	assert.Nil(t, ErrTokenExpired.Unwrap(), "predefined errors must not be mutated")
}

func TestAppError_WithDetailsCopies(t *testing.T) {
	err := ErrInvalidRequest.WithDetails(map[string]string{"username": "is required"})

	assert.Equal(t, "is required", err.Details["username"])
	assert.Nil(t, ErrInvalidRequest.Details)
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("decode: %w", ErrMalformedToken)

	assert.Equal(t, ErrCodeMalformedToken, CodeOf(wrapped))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))
}

func TestIsTokenError(t *testing.T) {
	for _, err := range []error{ErrBadSignature, ErrTokenExpired, ErrUnsupportedToken, ErrMalformedToken} {
		assert.True(t, IsTokenError(err), err.Error())
	}
	assert.False(t, IsTokenError(ErrBadCredentials))
}

func TestPredefinedStatuses(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, ErrUnauthorized.HTTPStatus)
	assert.Equal(t, http.StatusForbidden, ErrForbidden.HTTPStatus)
	assert.Equal(t, http.StatusConflict, ErrUserAlreadyExists.HTTPStatus)
	assert.Equal(t, http.StatusTooManyRequests, ErrRateLimitExceeded.HTTPStatus)
}
