package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/jwtauth/internal/domain/models"
	"github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/utils"
)

// Authentication attaches the principal of a valid bearer token to the request.
// It never rejects: requests without a usable token continue unauthenticated and
// the authorization stage decides whether that is acceptable.
func Authentication(authenticator *service.TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := utils.ExtractBearerToken(c.GetHeader(constants.AuthorizationHeader))

		principal, ok := authenticator.Authenticate(c.Request.Context(), token, c.Request.RequestURI)
		if ok {
			c.Request = c.Request.WithContext(models.ContextWithPrincipal(c.Request.Context(), principal))
			c.Set(constants.GinKeyPrincipal, principal)
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal attached by Authentication.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	return models.PrincipalFromContext(c.Request.Context())
}
