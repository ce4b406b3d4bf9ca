package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/jwtauth/pkg/logger"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker is a dependency whose reachability gates readiness.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides liveness and readiness endpoints.
type HealthHandler struct {
	checkers map[string]HealthChecker
	log      logger.Logger
}

// NewHealthHandler creates a new HealthHandler. Nil checkers are skipped.
func NewHealthHandler(checkers map[string]HealthChecker, log logger.Logger) *HealthHandler {
	active := make(map[string]HealthChecker, len(checkers))
	for name, checker := range checkers {
		if checker != nil {
			active[name] = checker
		}
	}
	return &HealthHandler{
		checkers: active,
		log:      log.WithComponent("HealthHandler"),
	}
}

// Live handles GET /health/live. It reports the process is up without touching dependencies.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// Ready handles GET /health/ready.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := "healthy"
	httpStatus := http.StatusOK
	checks := make(map[string]string, len(h.checkers))
	for name, err := range h.performChecks(ctx) {
		if err == nil {
			checks[name] = "ok"
			continue
		}
		// Ping errors can carry hosts or DSN fragments; they stay in the log.
		checks[name] = "error"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
		h.log.Warn(ctx, "Readiness check failed", logger.String("dependency", name), logger.Error(err))
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

func (h *HealthHandler) performChecks(ctx context.Context) map[string]error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make(map[string]error, len(h.checkers))

	wg.Add(len(h.checkers))
	for name, checker := range h.checkers {
		go func(name string, checker HealthChecker) {
			defer wg.Done()
			err := checker.Ping(ctx)
			mu.Lock()
			results[name] = err
			mu.Unlock()
		}(name, checker)
	}
	wg.Wait()
	return results
}
