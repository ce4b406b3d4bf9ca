// Package audit implements the AuditService interface for the configured sink.
package audit

import (
	"context"

	"github.com/turtacn/jwtauth/internal/domain/models"
	"github.com/turtacn/jwtauth/internal/domain/repository"
	"github.com/turtacn/jwtauth/internal/domain/service"
)

// GormAuditService stores audit events through the audit repository.
type GormAuditService struct {
	repo repository.AuditRepository
}

// NewGormAuditService creates and configures a new GormAuditService.
func NewGormAuditService(repo repository.AuditRepository) *GormAuditService {
	return &GormAuditService{repo: repo}
}

// LogEvent saves an AuditEvent to the database.
func (s *GormAuditService) LogEvent(ctx context.Context, event *models.AuditEvent) error {
	return s.repo.Save(ctx, event)
}

// NoopAuditService discards events. Used when audit.sink is "none".
type NoopAuditService struct{}

func (NoopAuditService) LogEvent(context.Context, *models.AuditEvent) error { return nil }

var (
	_ service.AuditService = (*GormAuditService)(nil)
	_ service.AuditService = NoopAuditService{}
)
