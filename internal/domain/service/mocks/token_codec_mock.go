package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/jwtauth/internal/domain/models"
)

// MockTokenCodec is a mock implementation of service.TokenCodec
type MockTokenCodec struct {
	mock.Mock
}

func (m *MockTokenCodec) Encode(subject string, roles []string, validity time.Duration) (string, error) {
	args := m.Called(subject, roles, validity)
	return args.String(0), args.Error(1)
}

func (m *MockTokenCodec) Issue(subject string, roles []string) (*models.IssuedToken, error) {
	args := m.Called(subject, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IssuedToken), args.Error(1)
}

func (m *MockTokenCodec) Decode(token string) (*models.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claims), args.Error(1)
}

func (m *MockTokenCodec) Validate(ctx context.Context, token string) bool {
	args := m.Called(ctx, token)
	return args.Bool(0)
}
