package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/jwtauth/internal/application/dto"
	"github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
)

// Authorization enforces the route policy against the request principal.
// A denied anonymous request gets 401, a denied authenticated one 403.
func Authorization(policy service.PolicyService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, authenticated := PrincipalFrom(c)

		allowed, err := policy.Enforce(principal.Roles, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			log.Error(c.Request.Context(), "Policy evaluation failed", err)
			dto.SendError(c, errors.ErrInternalServer)
			c.Abort()
			return
		}
		if allowed {
			c.Next()
			return
		}

		if !authenticated {
			log.Debug(c.Request.Context(), "Unauthenticated request denied",
				logger.String("path", c.Request.URL.Path),
			)
			dto.SendError(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		log.Debug(c.Request.Context(), "Access denied",
			logger.String("subject", principal.Subject),
			logger.String("path", c.Request.URL.Path),
		)
		dto.SendError(c, errors.ErrForbidden)
		c.Abort()
	}
}
