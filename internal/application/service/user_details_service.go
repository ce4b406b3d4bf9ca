// Package service provides application-level services that orchestrate domain services and repositories
package service

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/turtacn/jwtauth/internal/domain/models"
	"github.com/turtacn/jwtauth/internal/domain/repository"
	domainService "github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
)

// userDetailsServiceImpl loads active accounts for the login flow.
type userDetailsServiceImpl struct {
	userRepo repository.UserRepository
	group    singleflight.Group
	logger   logger.Logger
}

// NewUserDetailsService creates the login-facing identity lookup.
func NewUserDetailsService(userRepo repository.UserRepository, log logger.Logger) domainService.UserDetailsService {
	return &userDetailsServiceImpl{
		userRepo: userRepo,
		logger:   log.WithComponent("UserDetailsService"),
	}
}

// LoadUserByUsername returns the account with its roles. Concurrent lookups of one
// username share a single repository call, which outlives any one caller's cancellation.
func (s *userDetailsServiceImpl) LoadUserByUsername(ctx context.Context, username string) (*models.UserDetails, error) {
	lookupCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(username, func() (interface{}, error) {
		user, err := s.userRepo.FindOneWithAuthoritiesByUsername(lookupCtx, username)
		if err != nil {
			return nil, err
		}
		return models.NewUserDetails(user), nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}

	v, err := res.Val, res.Err
	if err != nil {
		if !errors.Is(err, errors.ErrUserNotFound) {
			s.logger.Error(ctx, "Failed to load user", err, logger.String("username", username))
		}
		return nil, err
	}

	shared := v.(*models.UserDetails)
	details := *shared
	details.Roles = append([]string(nil), shared.Roles...)

	if !details.Activated {
		s.logger.Info(ctx, "Login for deactivated account", logger.String("username", username))
		return nil, errors.ErrUserDeactivated
	}
	return &details, nil
}
