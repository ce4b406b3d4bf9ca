package service

import (
	"time"
)

// Metrics defines the interface for collecting business metrics.
// This abstraction allows the application layer to remain independent of the specific monitoring implementation (e.g., Prometheus).
type Metrics interface {
	// RecordTokenIssued counts a token handed out by the login flow.
	RecordTokenIssued()

	// RecordTokenRejection counts a bearer token that failed to decode, labelled by failure code.
	RecordTokenRejection(reason string)

	// RecordLoginAttempt counts a login attempt by result code ("success" or an error code).
	RecordLoginAttempt(result string)

	// RecordRateLimitHit records an event when a rate limit is triggered.
	RecordRateLimitHit(dimension string)

	// RecordDBQuery records the duration of a database query.
	RecordDBQuery(operation string, duration time.Duration)
}
