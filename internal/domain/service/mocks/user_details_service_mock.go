package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/jwtauth/internal/domain/models"
)

// MockUserDetailsService is a mock implementation of service.UserDetailsService
type MockUserDetailsService struct {
	mock.Mock
}

func (m *MockUserDetailsService) LoadUserByUsername(ctx context.Context, username string) (*models.UserDetails, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserDetails), args.Error(1)
}

// MockPasswordEncoder is a mock implementation of service.PasswordEncoder
type MockPasswordEncoder struct {
	mock.Mock
}

func (m *MockPasswordEncoder) Encode(rawPassword string) (string, error) {
	args := m.Called(rawPassword)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordEncoder) Matches(rawPassword, encodedPassword string) bool {
	args := m.Called(rawPassword, encodedPassword)
	return args.Bool(0)
}
