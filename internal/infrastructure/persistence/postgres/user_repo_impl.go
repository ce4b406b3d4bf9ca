package postgres

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/turtacn/jwtauth/internal/domain/models"
	"github.com/turtacn/jwtauth/internal/domain/repository"
	"github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
)

const pgUniqueViolation = "23505"

// UserRepoImpl implements UserRepository with GORM.
type UserRepoImpl struct {
	db      *gorm.DB
	metrics service.Metrics
	logger  logger.Logger
}

var _ repository.UserRepository = (*UserRepoImpl)(nil)

// NewUserRepository creates a GORM-backed user repository. metrics may be nil.
func NewUserRepository(db *gorm.DB, metrics service.Metrics, log logger.Logger) *UserRepoImpl {
	return &UserRepoImpl{
		db:      db,
		metrics: metrics,
		logger:  log.WithComponent("UserRepository"),
	}
}

func (r *UserRepoImpl) FindOneWithAuthoritiesByUsername(ctx context.Context, username string) (*models.User, error) {
	defer r.observe("find_user_with_authorities", time.Now())

	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Authorities").
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		r.logger.Error(ctx, "Failed to load user", err, logger.String("username", username))
		return nil, errors.ErrInternalServer.WithError(err)
	}
	return &user, nil
}

func (r *UserRepoImpl) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	defer r.observe("exists_by_username", time.Now())

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, errors.ErrInternalServer.WithError(err)
	}
	return count > 0, nil
}

func (r *UserRepoImpl) Create(ctx context.Context, user *models.User) error {
	defer r.observe("create_user", time.Now())

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureAuthorities(tx, user.Authorities); err != nil {
			return err
		}
		return tx.Omit("Authorities.*").Create(user).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return errors.ErrUserAlreadyExists
		}
		r.logger.Error(ctx, "Failed to create user", err, logger.String("username", user.Username))
		return errors.ErrInternalServer.WithError(err)
	}

	r.logger.Info(ctx, "User created",
		logger.String("username", user.Username),
		logger.Strings("authorities", user.AuthorityNames()),
	)
	return nil
}

func (r *UserRepoImpl) AddAuthorities(ctx context.Context, username string, roles ...string) error {
	defer r.observe("add_authorities", time.Now())

	authorities := make([]models.Authority, 0, len(roles))
	for _, role := range roles {
		authorities = append(authorities, models.Authority{AuthorityName: role})
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrUserNotFound
			}
			return errors.ErrInternalServer.WithError(err)
		}
		if err := ensureAuthorities(tx, authorities); err != nil {
			return errors.ErrInternalServer.WithError(err)
		}
		if err := tx.Model(&user).Omit("Authorities.*").Association("Authorities").Append(&authorities); err != nil {
			return errors.ErrInternalServer.WithError(err)
		}
		return nil
	})
}

func (r *UserRepoImpl) observe(operation string, start time.Time) {
	if r.metrics != nil {
		r.metrics.RecordDBQuery(operation, time.Since(start))
	}
}

func ensureAuthorities(tx *gorm.DB, authorities []models.Authority) error {
	if len(authorities) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&authorities).Error
}

// isUniqueViolation covers both the translated GORM error and a raw PostgreSQL 23505.
func isUniqueViolation(err error) bool {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
