// Package middleware provides the ordered HTTP request pipeline.
package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
)

// Stage names, in pipeline order.
const (
	StageRecovery       = "recovery"
	StageRequestID      = "request_id"
	StageObservability  = "observability"
	StageAccessLog      = "access_log"
	StageCORS           = "cors"
	StageAuthentication = "authentication"
	StageAuthorization  = "authorization"
)

// Stage is one named step of the pipeline.
type Stage struct {
	Name    string
	Handler gin.HandlerFunc
}

// PipelineDeps carries what the stages need. Tracer and Metrics are optional.
type PipelineDeps struct {
	Logger         logger.Logger
	Tracer         trace.Tracer
	Metrics        RequestMetrics
	AllowedOrigins []string
	Authenticator  *service.TokenAuthenticator
	Policy         service.PolicyService
}

// Pipeline is the fixed, ordered list of stages every request passes through.
type Pipeline struct {
	stages []Stage
}

// NewPipeline builds recovery, request_id, observability, access_log, cors,
// authentication and authorization, in that order.
func NewPipeline(deps PipelineDeps) (*Pipeline, error) {
	if deps.Authenticator == nil || deps.Policy == nil || deps.Logger == nil {
		return nil, errors.ErrInvalidConfig.WithDescription("pipeline needs a logger, an authenticator and a policy")
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = otel.Tracer(constants.ServiceName)
	}
	log := deps.Logger.WithComponent("http")

	p := &Pipeline{stages: []Stage{
		{StageRecovery, Recovery(log)},
		{StageRequestID, RequestID()},
		{StageObservability, Observability(tracer, deps.Metrics)},
		{StageAccessLog, AccessLog(log)},
		{StageCORS, CORS(deps.AllowedOrigins)},
		{StageAuthentication, Authentication(deps.Authenticator)},
		{StageAuthorization, Authorization(deps.Policy, log)},
	}}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// validate rejects any ordering where authorization could run before authentication.
func (p *Pipeline) validate() error {
	authn, authz := -1, -1
	for i, s := range p.stages {
		switch s.Name {
		case StageAuthentication:
			authn = i
		case StageAuthorization:
			authz = i
		}
	}
	if authn < 0 || authz < 0 || authn > authz {
		return errors.ErrInvalidConfig.WithDescription("authentication must run before authorization")
	}
	return nil
}

// Names returns the stage names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

// Handlers returns the stage handlers in execution order.
func (p *Pipeline) Handlers() []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, len(p.stages))
	for i, s := range p.stages {
		handlers[i] = s.Handler
	}
	return handlers
}

// Apply installs the pipeline on r.
func (p *Pipeline) Apply(r gin.IRoutes) {
	r.Use(p.Handlers()...)
}
