package service

import (
	"context"

	"github.com/turtacn/jwtauth/internal/application/dto"
	"github.com/turtacn/jwtauth/internal/config"
	"github.com/turtacn/jwtauth/internal/domain/models"
	"github.com/turtacn/jwtauth/internal/domain/repository"
	domainService "github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
	"github.com/turtacn/jwtauth/pkg/utils"
)

// UserAppService manages accounts.
type UserAppService interface {
	// Signup creates an activated account holding ROLE_USER.
	Signup(ctx context.Context, req *dto.SignupRequest, client dto.ClientInfo) (*dto.UserResponse, error)

	// GetUserWithAuthorities returns any account by username.
	GetUserWithAuthorities(ctx context.Context, username string) (*dto.UserResponse, error)

	// GetMyUserWithAuthorities returns the account of the principal attached to ctx.
	GetMyUserWithAuthorities(ctx context.Context) (*dto.UserResponse, error)

	// EnsureAdmin creates the bootstrap administrator, or grants ROLE_ADMIN if the account exists.
	EnsureAdmin(ctx context.Context, cfg config.BootstrapConfig) error
}

type userAppServiceImpl struct {
	userRepo        repository.UserRepository
	passwordEncoder domainService.PasswordEncoder
	auditService    domainService.AuditService
	logger          logger.Logger
}

// NewUserAppService creates a new instance of UserAppService.
func NewUserAppService(
	userRepo repository.UserRepository,
	passwordEncoder domainService.PasswordEncoder,
	auditService domainService.AuditService,
	log logger.Logger,
) UserAppService {
	return &userAppServiceImpl{
		userRepo:        userRepo,
		passwordEncoder: passwordEncoder,
		auditService:    auditService,
		logger:          log.WithComponent("UserAppService"),
	}
}

func (s *userAppServiceImpl) Signup(ctx context.Context, req *dto.SignupRequest, client dto.ClientInfo) (*dto.UserResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.ErrUserAlreadyExists
	}

	user, err := s.newUser(req.Username, req.Password, req.Nickname, constants.RoleUser)
	if err != nil {
		return nil, err
	}
	// The unique index still catches a concurrent signup for the same name.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	requestID, _ := ctx.Value(constants.ContextKeyRequestID).(string)
	event := models.NewAuditEvent(constants.AuditEventSignup, user.Username, true).
		WithContextInfo(client.IPAddress, client.UserAgent, requestID)
	if err := s.auditService.LogEvent(ctx, event); err != nil {
		s.logger.Warn(ctx, "Failed to record audit event", logger.Error(err))
	}

	s.logger.Info(ctx, "User signed up", logger.String("username", user.Username))
	return dto.NewUserResponse(user), nil
}

func (s *userAppServiceImpl) GetUserWithAuthorities(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindOneWithAuthoritiesByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userAppServiceImpl) GetMyUserWithAuthorities(ctx context.Context) (*dto.UserResponse, error) {
	principal, ok := models.PrincipalFromContext(ctx)
	if !ok {
		return nil, errors.ErrUnauthorized
	}
	return s.GetUserWithAuthorities(ctx, principal.Subject)
}

func (s *userAppServiceImpl) EnsureAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	if cfg.AdminUsername == "" {
		return nil
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, cfg.AdminUsername)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Info(ctx, "Bootstrap admin exists, ensuring authorities", logger.String("username", cfg.AdminUsername))
		return s.userRepo.AddAuthorities(ctx, cfg.AdminUsername, constants.RoleUser, constants.RoleAdmin)
	}

	if cfg.AdminPassword == "" {
		return errors.ErrInvalidConfig.WithDescription("bootstrap.admin_password is required to create the admin")
	}
	nickname := cfg.AdminNickname
	if nickname == "" {
		nickname = cfg.AdminUsername
	}

	user, err := s.newUser(cfg.AdminUsername, cfg.AdminPassword, nickname, constants.RoleUser, constants.RoleAdmin)
	if err != nil {
		return err
	}
	if err := s.userRepo.Create(ctx, user); err != nil && !errors.Is(err, errors.ErrUserAlreadyExists) {
		return err
	}

	s.logger.Info(ctx, "Bootstrap admin created", logger.String("username", cfg.AdminUsername))
	return nil
}

func (s *userAppServiceImpl) newUser(username, password, nickname string, roles ...string) (*models.User, error) {
	hash, err := s.passwordEncoder.Encode(password)
	if err != nil {
		return nil, errors.ErrInternalServer.WithError(err)
	}

	authorities := make([]models.Authority, 0, len(roles))
	for _, role := range roles {
		authorities = append(authorities, models.Authority{AuthorityName: role})
	}
	return &models.User{
		Username:    username,
		Password:    hash,
		Nickname:    nickname,
		Activated:   true,
		Authorities: authorities,
	}, nil
}
