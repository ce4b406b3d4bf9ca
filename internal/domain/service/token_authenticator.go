package service

import (
	"context"

	"github.com/turtacn/jwtauth/internal/domain/models"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
)

// TokenAuthenticator is the authentication step shared by the HTTP and gRPC transports.
// It never fails a request; an unusable token simply yields no principal.
type TokenAuthenticator struct {
	codec   TokenCodec
	metrics Metrics
	log     logger.Logger
}

// NewTokenAuthenticator creates a TokenAuthenticator. metrics may be nil.
func NewTokenAuthenticator(codec TokenCodec, metrics Metrics, log logger.Logger) *TokenAuthenticator {
	return &TokenAuthenticator{
		codec:   codec,
		metrics: metrics,
		log:     log.WithComponent("TokenAuthenticator"),
	}
}

// Authenticate decodes token once and resolves its principal.
// uri is only used for the debug log emitted on failure.
func (a *TokenAuthenticator) Authenticate(ctx context.Context, token, uri string) (models.Principal, bool) {
	if token == "" {
		a.log.Debug(ctx, "no valid bearer token", logger.String("uri", uri))
		return models.Principal{}, false
	}

	claims, err := a.codec.Decode(token)
	if err != nil {
		code := errors.CodeOf(err)
		a.log.Debug(ctx, "bearer token rejected",
			logger.String("uri", uri),
			logger.String("reason", code),
		)
		if a.metrics != nil {
			a.metrics.RecordTokenRejection(code)
		}
		return models.Principal{}, false
	}

	principal := ResolvePrincipal(claims)
	a.log.Debug(ctx, "authenticated request",
		logger.String("subject", principal.Subject),
		logger.String("uri", uri),
	)
	return principal, true
}
