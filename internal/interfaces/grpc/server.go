// Package grpc exposes identity lookups and health over gRPC.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/turtacn/jwtauth/internal/config"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
)

// Server wraps a grpc.Server with the health service registered.
type Server struct {
	server *grpc.Server
	health *health.Server
	config *config.ServerConfig
	logger logger.Logger
}

// NewServer creates the gRPC server and registers identity and health services.
func NewServer(cfg *config.ServerConfig, log logger.Logger, chain *InterceptorChain, identity IdentityServer) *Server {
	server := grpc.NewServer(chain.ChainUnaryInterceptors())
	server.RegisterService(&IdentityServiceDesc, identity)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(IdentityServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	return &Server{
		server: server,
		health: healthServer,
		config: cfg,
		logger: log.WithComponent("GRPCServer"),
	}
}

// Start listens on the configured gRPC address and serves until Stop.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.config.GRPCAddr())
	if err != nil {
		return errors.ErrServiceUnavailable.WithDescription("grpc listen failed").WithError(err)
	}
	return s.Serve(lis)
}

// Serve serves on lis until Stop.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info(context.Background(), "Starting gRPC server", logger.String("address", lis.Addr().String()))
	if err := s.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// Stop marks the server NOT_SERVING and drains in-flight calls until ctx is done.
func (s *Server) Stop(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn(ctx, "gRPC graceful stop timed out, forcing")
		s.server.Stop()
	}
	s.logger.Info(ctx, "gRPC server stopped")
}
