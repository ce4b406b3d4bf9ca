package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	appservice "github.com/turtacn/jwtauth/internal/application/service"
	"github.com/turtacn/jwtauth/internal/config"
	domainservice "github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/internal/infrastructure/audit"
	"github.com/turtacn/jwtauth/internal/infrastructure/crypto"
	"github.com/turtacn/jwtauth/internal/infrastructure/kms"
	"github.com/turtacn/jwtauth/internal/infrastructure/monitoring"
	"github.com/turtacn/jwtauth/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/jwtauth/internal/infrastructure/persistence/redis"
	"github.com/turtacn/jwtauth/internal/infrastructure/policy"
	"github.com/turtacn/jwtauth/internal/infrastructure/ratelimit"
	grpcserver "github.com/turtacn/jwtauth/internal/interfaces/grpc"
	httpserver "github.com/turtacn/jwtauth/internal/interfaces/http"
	"github.com/turtacn/jwtauth/internal/interfaces/http/handlers"
	"github.com/turtacn/jwtauth/internal/interfaces/http/middleware"
	"github.com/turtacn/jwtauth/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	// Load config
	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader.Watch(func(updated *config.Config) {
		if err := appLogger.SetLevel(updated.Log.Level); err != nil {
			appLogger.Warn(ctx, "Ignoring invalid log level", logger.String("level", updated.Log.Level))
			return
		}
		appLogger.Info(ctx, "Log level updated", logger.String("level", updated.Log.Level))
	}, func(err error) {
		appLogger.Error(ctx, "Config reload rejected", err)
	})

	// Initialize tracing
	tracing, err := monitoring.NewTracingManager(&cfg.Tracing, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize tracer", err)
	}

	// Signing key
	secretSource, err := kms.NewSecretSource(cfg, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to create secret source", err)
	}
	secret, err := secretSource.FetchSigningSecret(ctx)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to fetch signing secret", err)
	}
	signingKey, err := crypto.NewSigningKey(secret)
	if err != nil {
		appLogger.Fatal(ctx, "Invalid signing key", err)
	}
	tokenCodec := crypto.NewJWTCodec(signingKey, cfg.JWT.TokenValidity(), appLogger)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(registry)

	// Initialize database
	db, err := postgres.NewDBConnection(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to connect to database", err)
	}
	defer db.Close()

	healthCheckers := map[string]handlers.HealthChecker{"database": db}

	// Initialize Redis and the login rate limiter
	var rateLimiter domainservice.RateLimitService
	if cfg.RateLimit.Enabled {
		var client *redis.RedisConnection
		if cfg.Redis.Enabled {
			client = redis.NewRedisConnection(&cfg.Redis, appLogger)
			if err := client.Connect(ctx); err != nil {
				appLogger.Fatal(ctx, "Failed to connect to Redis", err)
			}
			defer client.Close()
			healthCheckers["redis"] = client
			rateLimiter = ratelimit.NewRedisRateLimiter(client.Client(), &cfg.RateLimit, metrics, appLogger)
		} else {
			rateLimiter = ratelimit.NewRedisRateLimiter(nil, &cfg.RateLimit, metrics, appLogger)
		}
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db.DB(), metrics, appLogger)
	auditRepo := postgres.NewAuditRepository(db.DB())

	auditSvc, auditCloser, err := audit.NewAuditService(&cfg.Audit, auditRepo, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to create audit sink", err)
	}
	defer auditCloser.Close()

	// Initialize application services
	encoder := crypto.NewBcryptPasswordEncoder(bcrypt.DefaultCost)
	userDetails := appservice.NewUserDetailsService(userRepo, appLogger)
	authAppSvc := appservice.NewAuthAppService(userDetails, encoder, tokenCodec, rateLimiter, auditSvc, metrics, appLogger)
	userAppSvc := appservice.NewUserAppService(userRepo, encoder, auditSvc, appLogger)

	if err := userAppSvc.EnsureAdmin(ctx, cfg.Bootstrap); err != nil {
		appLogger.Fatal(ctx, "Failed to bootstrap admin", err)
	}

	authenticator := domainservice.NewTokenAuthenticator(tokenCodec, metrics, appLogger)
	authz, err := policy.NewCasbinPolicy(cfg.Authz.ExtraPolicies)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to load authorization policy", err)
	}

	// HTTP
	pipeline, err := middleware.NewPipeline(middleware.PipelineDeps{
		Logger:         appLogger,
		Tracer:         tracing.Tracer(),
		Metrics:        metrics,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Authenticator:  authenticator,
		Policy:         authz,
	})
	if err != nil {
		appLogger.Fatal(ctx, "Failed to build request pipeline", err)
	}
	router := httpserver.NewRouter(&cfg.Server, appLogger, pipeline, httpserver.Handlers{
		Auth:   handlers.NewAuthHandler(authAppSvc),
		User:   handlers.NewUserHandler(userAppSvc),
		Health: handlers.NewHealthHandler(healthCheckers, appLogger),
	}, registry)

	// gRPC
	var grpcServer *grpcserver.Server
	if cfg.Server.GRPCPort > 0 {
		chain := grpcserver.NewInterceptorChain(appLogger, metrics, authenticator)
		grpcServer = grpcserver.NewServer(&cfg.Server, appLogger, chain, grpcserver.NewIdentityService(tokenCodec))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(router.Start)
	if grpcServer != nil {
		g.Go(grpcServer.Start)
	}
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info(context.Background(), "Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		if grpcServer != nil {
			grpcServer.Stop(shutdownCtx)
		}
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "Tracer shutdown failed", err)
		}
		return router.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error(context.Background(), "Server exited with error", err)
	}
}
