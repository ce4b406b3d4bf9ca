// Package policy decides which roles may call which routes.
package policy

import (
	_ "embed"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/turtacn/jwtauth/internal/config"
	"github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/errors"
)

//go:embed model.conf
var casbinModelContent string

// DefaultRules is the built-in route table. Rules for "anonymous" apply to every caller.
var DefaultRules = []config.PolicyRule{
	{Role: constants.RoleAnonymous, Path: "/api/hello", Method: http.MethodGet},
	{Role: constants.RoleAnonymous, Path: "/api/authenticate", Method: http.MethodPost},
	{Role: constants.RoleAnonymous, Path: "/api/signup", Method: http.MethodPost},
	{Role: constants.RoleAnonymous, Path: "/health/*", Method: http.MethodGet},
	{Role: constants.RoleAnonymous, Path: "/metrics", Method: http.MethodGet},
	{Role: constants.RoleUser, Path: "/api/user", Method: http.MethodGet},
	{Role: constants.RoleAdmin, Path: "/api/user/:username", Method: http.MethodGet},
	{Role: constants.RoleAdmin, Path: "/debug/pprof/*", Method: "*"},
}

// CasbinPolicy evaluates route access with an in-memory casbin enforcer.
type CasbinPolicy struct {
	enforcer *casbin.SyncedEnforcer
}

var _ service.PolicyService = (*CasbinPolicy)(nil)

// NewCasbinPolicy loads DefaultRules followed by extra. ROLE_ADMIN inherits ROLE_USER.
func NewCasbinPolicy(extra []config.PolicyRule) (*CasbinPolicy, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, errors.ErrInternalServer.WithDescription("parse casbin model").WithError(err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, errors.ErrInternalServer.WithDescription("create casbin enforcer").WithError(err)
	}

	rules := make([][]string, 0, len(DefaultRules)+len(extra))
	for _, r := range append(append([]config.PolicyRule{}, DefaultRules...), extra...) {
		if r.Role == "" || r.Path == "" || r.Method == "" {
			return nil, errors.ErrInvalidConfig.WithDescription("policy rules need role, path and method")
		}
		rules = append(rules, []string{r.Role, r.Path, r.Method})
	}
	if _, err := enforcer.AddPolicies(rules); err != nil {
		return nil, errors.ErrInternalServer.WithDescription("load policies").WithError(err)
	}
	if _, err := enforcer.AddGroupingPolicy(constants.RoleAdmin, constants.RoleUser); err != nil {
		return nil, errors.ErrInternalServer.WithDescription("load role hierarchy").WithError(err)
	}

	return &CasbinPolicy{enforcer: enforcer}, nil
}

// Enforce allows the request if any role may call method on path.
func (p *CasbinPolicy) Enforce(roles []string, path, method string) (bool, error) {
	if len(roles) == 0 {
		roles = []string{constants.RoleAnonymous}
	}
	for _, role := range roles {
		ok, err := p.enforcer.Enforce(role, path, method)
		if err != nil {
			return false, errors.ErrInternalServer.WithError(err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
