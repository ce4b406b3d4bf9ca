package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/jwtauth/pkg/constants"
)

// AuditEvent records a login or signup outcome.
type AuditEvent struct {
	EventID   string                   `json:"event_id" gorm:"primaryKey;size:36"`
	EventType constants.AuditEventType `json:"event_type" gorm:"size:32;index"`
	Username  string                   `json:"username" gorm:"size:50;index"`
	Success   bool                     `json:"success"`
	Reason    string                   `json:"reason,omitempty" gorm:"size:64"`
	IPAddress string                   `json:"ip_address,omitempty" gorm:"size:64"`
	UserAgent string                   `json:"user_agent,omitempty" gorm:"size:255"`
	RequestID string                   `json:"request_id,omitempty" gorm:"size:64"`
	Timestamp time.Time                `json:"timestamp" gorm:"index"`
}

// TableName overrides the default table name.
func (AuditEvent) TableName() string {
	return "audit_events"
}

// NewAuditEvent creates a new audit event.
func NewAuditEvent(eventType constants.AuditEventType, username string, success bool) *AuditEvent {
	return &AuditEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Username:  username,
		Success:   success,
		Timestamp: time.Now().UTC(),
	}
}

// WithReason sets the failure code for unsuccessful events.
func (a *AuditEvent) WithReason(reason string) *AuditEvent {
	a.Reason = reason
	return a
}

// WithContextInfo sets request-related information.
func (a *AuditEvent) WithContextInfo(ip, ua, requestID string) *AuditEvent {
	a.IPAddress = ip
	a.UserAgent = ua
	a.RequestID = requestID
	return a
}
