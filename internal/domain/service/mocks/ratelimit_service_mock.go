package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/jwtauth/internal/domain/service"
)

// MockRateLimitService is a mock implementation of RateLimitService
type MockRateLimitService struct {
	mock.Mock
}

func (m *MockRateLimitService) Allow(
	ctx context.Context,
	dimension service.RateLimitDimension,
	key string,
) (bool, int, time.Time, error) {
	args := m.Called(ctx, dimension, key)
	return args.Bool(0), args.Int(1), args.Get(2).(time.Time), args.Error(3)
}

func (m *MockRateLimitService) Reset(ctx context.Context, dimension service.RateLimitDimension, key string) error {
	args := m.Called(ctx, dimension, key)
	return args.Error(0)
}
