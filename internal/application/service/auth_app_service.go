package service

import (
	"context"
	"strconv"
	"time"

	"github.com/turtacn/jwtauth/internal/application/dto"
	"github.com/turtacn/jwtauth/internal/domain/models"
	domainService "github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
	"github.com/turtacn/jwtauth/pkg/utils"
)

// Login attempt results, used as metric labels.
const (
	loginResultSuccess     = "success"
	loginResultFailure     = "failure"
	loginResultRateLimited = "rate_limited"
)

// AuthAppService defines the interface for the login flow.
type AuthAppService interface {
	// Authenticate verifies the password and issues a bearer token.
	// Unknown users and wrong passwords both fail with errors.ErrBadCredentials.
	Authenticate(ctx context.Context, req *dto.LoginRequest, client dto.ClientInfo) (*dto.TokenResponse, error)
}

// authAppServiceImpl is the concrete implementation of AuthAppService
type authAppServiceImpl struct {
	userDetails      domainService.UserDetailsService
	passwordEncoder  domainService.PasswordEncoder
	tokenCodec       domainService.TokenCodec
	rateLimitService domainService.RateLimitService
	auditService     domainService.AuditService
	metrics          domainService.Metrics
	logger           logger.Logger
	now              func() time.Time
}

// NewAuthAppService creates a new instance of AuthAppService.
// rateLimitService and metrics may be nil.
func NewAuthAppService(
	userDetails domainService.UserDetailsService,
	passwordEncoder domainService.PasswordEncoder,
	tokenCodec domainService.TokenCodec,
	rateLimitService domainService.RateLimitService,
	auditService domainService.AuditService,
	metrics domainService.Metrics,
	log logger.Logger,
) AuthAppService {
	return &authAppServiceImpl{
		userDetails:      userDetails,
		passwordEncoder:  passwordEncoder,
		tokenCodec:       tokenCodec,
		rateLimitService: rateLimitService,
		auditService:     auditService,
		metrics:          metrics,
		logger:           log.WithComponent("AuthAppService"),
		now:              time.Now,
	}
}

func (s *authAppServiceImpl) Authenticate(ctx context.Context, req *dto.LoginRequest, client dto.ClientInfo) (*dto.TokenResponse, error) {
	// 1. Validate request payload
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	// 2. Throttle per username and per client address
	if err := s.checkRateLimit(ctx, req.Username, client); err != nil {
		s.recordAttempt(loginResultRateLimited)
		s.audit(ctx, models.NewAuditEvent(constants.AuditEventLoginFailed, req.Username, false).
			WithReason(errors.CodeOf(err)), client)
		return nil, err
	}

	// 3. Load the account and verify the password
	details, err := s.userDetails.LoadUserByUsername(ctx, req.Username)
	if err == nil && !s.passwordEncoder.Matches(req.Password, details.PasswordHash) {
		err = errors.ErrBadCredentials
	}
	if errors.Is(err, errors.ErrUserNotFound) {
		err = errors.ErrBadCredentials
	}
	if err != nil {
		s.recordAttempt(loginResultFailure)
		s.audit(ctx, models.NewAuditEvent(constants.AuditEventLoginFailed, req.Username, false).
			WithReason(errors.CodeOf(err)), client)
		s.logger.Info(ctx, "Login failed",
			logger.String("username", req.Username),
			logger.String("reason", errors.CodeOf(err)),
		)
		return nil, err
	}

	// 4. Issue the token
	issued, err := s.tokenCodec.Issue(details.Username, details.Roles)
	if err != nil {
		s.logger.Error(ctx, "Failed to issue token", err, logger.String("username", details.Username))
		return nil, err
	}

	s.resetUserLimit(ctx, details.Username)
	s.recordAttempt(loginResultSuccess)
	if s.metrics != nil {
		s.metrics.RecordTokenIssued()
	}
	s.audit(ctx, models.NewAuditEvent(constants.AuditEventLoginSucceeded, details.Username, true), client)
	s.logger.Info(ctx, "Login succeeded",
		logger.String("username", details.Username),
		logger.Strings("roles", details.Roles),
	)

	return dto.NewTokenResponse(issued, s.now()), nil
}

func (s *authAppServiceImpl) checkRateLimit(ctx context.Context, username string, client dto.ClientInfo) error {
	if s.rateLimitService == nil {
		return nil
	}

	checks := []struct {
		dimension domainService.RateLimitDimension
		key       string
	}{
		{domainService.RateLimitDimensionUser, username},
		{domainService.RateLimitDimensionIP, client.IPAddress},
	}
	for _, check := range checks {
		if check.key == "" {
			continue
		}
		allowed, _, resetAt, err := s.rateLimitService.Allow(ctx, check.dimension, check.key)
		if err != nil {
			s.logger.Error(ctx, "Failed to check rate limit", err, logger.String("dimension", string(check.dimension)))
			return errors.ErrServiceUnavailable.WithError(err)
		}
		if !allowed {
			s.logger.Warn(ctx, "Login rate limit exceeded",
				logger.String("dimension", string(check.dimension)),
				logger.String("username", username),
			)
			retryAfter := int64(resetAt.Sub(s.now()).Seconds() + 0.5)
			if retryAfter < 1 {
				retryAfter = 1
			}
			return errors.ErrRateLimitExceeded.WithDetails(map[string]string{
				"retry_after": strconv.FormatInt(retryAfter, 10),
			})
		}
	}
	return nil
}

// resetUserLimit refills the username bucket; the client address bucket keeps counting.
func (s *authAppServiceImpl) resetUserLimit(ctx context.Context, username string) {
	if s.rateLimitService == nil {
		return
	}
	if err := s.rateLimitService.Reset(ctx, domainService.RateLimitDimensionUser, username); err != nil {
		s.logger.Warn(ctx, "Failed to reset login rate limit",
			logger.String("username", username),
			logger.Error(err),
		)
	}
}

func (s *authAppServiceImpl) recordAttempt(result string) {
	if s.metrics != nil {
		s.metrics.RecordLoginAttempt(result)
	}
}

// audit never fails the login; a sink outage is logged and the flow continues.
func (s *authAppServiceImpl) audit(ctx context.Context, event *models.AuditEvent, client dto.ClientInfo) {
	requestID, _ := ctx.Value(constants.ContextKeyRequestID).(string)
	event.WithContextInfo(client.IPAddress, client.UserAgent, requestID)
	if err := s.auditService.LogEvent(ctx, event); err != nil {
		s.logger.Warn(ctx, "Failed to record audit event",
			logger.String("event_type", string(event.EventType)),
			logger.Error(err),
		)
	}
}
