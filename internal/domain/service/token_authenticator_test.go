package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/jwtauth/internal/domain/models"
	"github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/internal/domain/service/mocks"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
)

func TestTokenAuthenticator_Success(t *testing.T) {
	codec := new(mocks.MockTokenCodec)
	metrics := new(mocks.MockMetrics)
	codec.On("Decode", "good").Return(&models.Claims{
		Subject:     "alice",
		Authorities: "ROLE_USER",
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil).Once()

	auth := service.NewTokenAuthenticator(codec, metrics, logger.NewNoopLogger())
	p, ok := auth.Authenticate(context.Background(), "good", "/api/user")

	require.True(t, ok)
	assert.Equal(t, models.Principal{Subject: "alice", Roles: []string{"ROLE_USER"}}, p)
	codec.AssertExpectations(t)
	metrics.AssertNotCalled(t, "RecordTokenRejection", "bad_signature")
}

func TestTokenAuthenticator_Failures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason string
	}{
		{"bad signature", errors.ErrBadSignature, "bad_signature"},
		{"expired", errors.ErrTokenExpired, "token_expired"},
		{"unsupported", errors.ErrUnsupportedToken, "unsupported_token"},
		{"malformed", errors.ErrMalformedToken.WithError(errors.New("boom")), "malformed_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := new(mocks.MockTokenCodec)
			metrics := new(mocks.MockMetrics)
			codec.On("Decode", "tok").Return(nil, tt.err).Once()
			metrics.On("RecordTokenRejection", tt.reason).Once()

			auth := service.NewTokenAuthenticator(codec, metrics, logger.NewNoopLogger())
			p, ok := auth.Authenticate(context.Background(), "tok", "/api/user")

			assert.False(t, ok)
			assert.Empty(t, p.Subject)
			codec.AssertExpectations(t)
			metrics.AssertExpectations(t)
		})
	}
}

func TestTokenAuthenticator_EmptyTokenSkipsDecode(t *testing.T) {
	codec := new(mocks.MockTokenCodec)

	auth := service.NewTokenAuthenticator(codec, nil, logger.NewNoopLogger())
	_, ok := auth.Authenticate(context.Background(), "", "/api/hello")

	assert.False(t, ok)
	codec.AssertNotCalled(t, "Decode", "")
}
