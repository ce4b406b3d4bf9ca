// Package http exposes the authentication API over gin.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/jwtauth/internal/application/dto"
	"github.com/turtacn/jwtauth/internal/config"
	"github.com/turtacn/jwtauth/internal/interfaces/http/handlers"
	"github.com/turtacn/jwtauth/internal/interfaces/http/middleware"
	appErrors "github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
)

// Handlers groups the endpoint handlers mounted by the router.
type Handlers struct {
	Auth   *handlers.AuthHandler
	User   *handlers.UserHandler
	Health *handlers.HealthHandler
}

// Router owns the gin engine and the HTTP server around it.
type Router struct {
	engine *gin.Engine
	config *config.ServerConfig
	logger logger.Logger
	server *http.Server
}

// NewRouter installs the pipeline and mounts every route. gatherer backs /metrics.
func NewRouter(
	cfg *config.ServerConfig,
	log logger.Logger,
	pipeline *middleware.Pipeline,
	h Handlers,
	gatherer prometheus.Gatherer,
) *Router {
	switch cfg.Mode {
	case gin.DebugMode, gin.TestMode, gin.ReleaseMode:
		gin.SetMode(cfg.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	pipeline.Apply(engine)

	r := &Router{
		engine: engine,
		config: cfg,
		logger: log.WithComponent("Router"),
	}
	r.setupRoutes(h, gatherer)
	return r
}

func (r *Router) setupRoutes(h Handlers, gatherer prometheus.Gatherer) {
	health := r.engine.Group("/health")
	{
		health.GET("/live", h.Health.Live)
		health.GET("/ready", h.Health.Ready)
	}

	if gatherer != nil {
		r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Restricted to ROLE_ADMIN by the authorization stage.
	if r.config.EnablePprof {
		pprof.Register(r.engine)
	}

	api := r.engine.Group("/api")
	{
		api.GET("/hello", h.Auth.Hello)
		api.POST("/authenticate", h.Auth.Authenticate)
		api.POST("/signup", h.User.Signup)
		api.GET("/user", h.User.GetMyUser)
		api.GET("/user/:username", h.User.GetUser)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		dto.SendError(c, appErrors.ErrNotFound)
	})
}

// Handler returns the engine, for tests and embedding.
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Start serves HTTP until Stop is called.
func (r *Router) Start() error {
	r.server = &http.Server{
		Addr:           r.config.HTTPAddr(),
		Handler:        r.engine,
		ReadTimeout:    time.Duration(r.config.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(r.config.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	r.logger.Info(context.Background(), "Starting HTTP server", logger.String("address", r.server.Addr))
	if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down.
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	r.logger.Info(ctx, "Stopping HTTP server")
	return r.server.Shutdown(ctx)
}
