package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockMetrics is a mock implementation of service.Metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordTokenIssued() {
	m.Called()
}

func (m *MockMetrics) RecordTokenRejection(reason string) {
	m.Called(reason)
}

func (m *MockMetrics) RecordLoginAttempt(result string) {
	m.Called(result)
}

func (m *MockMetrics) RecordRateLimitHit(dimension string) {
	m.Called(dimension)
}

func (m *MockMetrics) RecordDBQuery(operation string, duration time.Duration) {
	m.Called(operation, duration)
}
