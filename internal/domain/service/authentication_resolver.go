package service

import (
	"github.com/turtacn/jwtauth/internal/domain/models"
	"github.com/turtacn/jwtauth/pkg/utils"
)

// ResolvePrincipal rebuilds the principal carried by verified claims.
// Roles come from the comma-joined authorities claim with empty segments dropped,
// so an empty claim yields a principal with no roles.
func ResolvePrincipal(claims *models.Claims) models.Principal {
	return models.Principal{
		Subject: claims.Subject,
		Roles:   utils.SplitAuthorities(claims.Authorities),
	}
}
