package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/turtacn/jwtauth/internal/domain/models"
	"github.com/turtacn/jwtauth/internal/domain/repository"
	"github.com/turtacn/jwtauth/pkg/errors"
)

// AuditRepoImpl stores audit events in the audit_events table.
type AuditRepoImpl struct {
	db *gorm.DB
}

var _ repository.AuditRepository = (*AuditRepoImpl)(nil)

func NewAuditRepository(db *gorm.DB) *AuditRepoImpl {
	return &AuditRepoImpl{db: db}
}

func (r *AuditRepoImpl) Save(ctx context.Context, event *models.AuditEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return errors.ErrInternalServer.WithDescription("failed to store audit event").WithError(err)
	}
	return nil
}

func (r *AuditRepoImpl) FindByUsername(ctx context.Context, username string, limit int) ([]*models.AuditEvent, error) {
	var events []*models.AuditEvent
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("timestamp DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, errors.ErrInternalServer.WithError(err)
	}
	return events, nil
}
