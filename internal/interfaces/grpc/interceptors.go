package grpc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	grpcCodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/turtacn/jwtauth/internal/domain/models"
	"github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
	"github.com/turtacn/jwtauth/pkg/utils"
)

// RequestMetrics records per-call metrics.
type RequestMetrics interface {
	ObserveGRPCRequest(method, code string)
}

// InterceptorChain builds the unary interceptors of the gRPC server.
type InterceptorChain struct {
	log           logger.Logger
	metrics       RequestMetrics
	authenticator *service.TokenAuthenticator
}

// NewInterceptorChain creates an InterceptorChain. metrics may be nil.
func NewInterceptorChain(
	log logger.Logger,
	metrics RequestMetrics,
	authenticator *service.TokenAuthenticator,
) *InterceptorChain {
	return &InterceptorChain{
		log:           log.WithComponent("grpc"),
		metrics:       metrics,
		authenticator: authenticator,
	}
}

// UnaryRecoveryInterceptor turns a handler panic into codes.Internal.
func (ic *InterceptorChain) UnaryRecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				ic.log.Error(ctx, "gRPC handler panic recovered", fmt.Errorf("%v", r),
					logger.String("method", info.FullMethod),
				)
				err = status.Error(grpcCodes.Internal, "internal server error")
			}
		}()

		return handler(ctx, req)
	}
}

// UnaryLoggingInterceptor logs every call with its latency and status code.
func (ic *InterceptorChain) UnaryLoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		startTime := time.Now()

		resp, err := handler(ctx, req)

		code := status.Code(err)
		ic.log.Info(ctx, "gRPC request completed",
			logger.String("method", info.FullMethod),
			logger.Int64("duration_ms", time.Since(startTime).Milliseconds()),
			logger.String("status", code.String()),
		)
		if ic.metrics != nil {
			ic.metrics.ObserveGRPCRequest(info.FullMethod, code.String())
		}
		return resp, err
	}
}

// UnaryAuthInterceptor attaches the principal of a valid bearer token carried in the
// authorization metadata. Like the HTTP stage it never rejects a call.
func (ic *InterceptorChain) UnaryAuthInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		var token string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(constants.AuthorizationMetadataKey); len(values) > 0 {
				token, _ = utils.ExtractBearerToken(values[0])
			}
		}

		if principal, ok := ic.authenticator.Authenticate(ctx, token, info.FullMethod); ok {
			ctx = models.ContextWithPrincipal(ctx, principal)
		}
		return handler(ctx, req)
	}
}

// UnaryErrorInterceptor converts application errors into gRPC status errors.
func (ic *InterceptorChain) UnaryErrorInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		return resp, toStatus(err)
	}
}

// toStatus maps an error to a gRPC status by its HTTP status.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return status.Error(grpcCodes.Internal, "internal server error")
	}

	msg := appErr.Code
	if appErr.Message != "" {
		msg = strings.Join([]string{appErr.Code, appErr.Message}, ": ")
	}

	switch appErr.HTTPStatus {
	case 400:
		return status.Error(grpcCodes.InvalidArgument, msg)
	case 401:
		return status.Error(grpcCodes.Unauthenticated, msg)
	case 403:
		return status.Error(grpcCodes.PermissionDenied, msg)
	case 404:
		return status.Error(grpcCodes.NotFound, msg)
	case 409:
		return status.Error(grpcCodes.AlreadyExists, msg)
	case 429:
		return status.Error(grpcCodes.ResourceExhausted, msg)
	case 503:
		return status.Error(grpcCodes.Unavailable, msg)
	default:
		return status.Error(grpcCodes.Internal, msg)
	}
}

// ChainUnaryInterceptors chains the interceptors in execution order.
func (ic *InterceptorChain) ChainUnaryInterceptors() grpc.ServerOption {
	return grpc.ChainUnaryInterceptor(
		ic.UnaryRecoveryInterceptor(), // 1. recover panics
		ic.UnaryLoggingInterceptor(),  // 2. log and count
		ic.UnaryErrorInterceptor(),    // 3. map errors
		ic.UnaryAuthInterceptor(),     // 4. attach principal
	)
}
