package models

import (
	"context"

	"github.com/turtacn/jwtauth/pkg/utils"
)

// Principal is the authenticated identity rebuilt from a valid token.
// It lives for a single request.
type Principal struct {
	Subject string   `json:"subject"`
	Roles   []string `json:"roles"`
}

// HasRole reports whether the principal was granted role.
func (p Principal) HasRole(role string) bool {
	return utils.Contains(p.Roles, role)
}

type principalContextKey struct{}

// ContextWithPrincipal returns a copy of ctx carrying p.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal attached to ctx, if any.
// A request without one proceeds unauthenticated.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
