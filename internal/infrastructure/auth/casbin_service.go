package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoleSubject maps a user role to its Casbin subject
func RoleSubject(role string) string {
	return "role_" + role
}

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// DefaultPolicies are seeded when the policy table is empty
var DefaultPolicies = [][]string{
	{RoleSubject("user"), "/session", "GET"},
	{RoleSubject("user"), "/session/logout", "POST"},
}

type CasbinService struct{ E *casbin.Enforcer }

// NewCasbinService loads policies from the casbin_rule table and seeds defaults on first start
func NewCasbinService(db *gorm.DB, log *zap.Logger) (*CasbinService, error) {
	adp, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("casbin adapter: %w", err)
	}
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("casbin model: %w", err)
	}
	e, err := casbin.NewEnforcer(m, adp)
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("casbin load policy: %w", err)
	}

	svc := &CasbinService{E: e}
	if err := svc.seed(log); err != nil {
		return nil, err
	}
	return svc, nil
}

// Allowed reports whether role may perform act on obj
func (s *CasbinService) Allowed(role, obj, act string) (bool, error) {
	return s.E.Enforce(RoleSubject(role), obj, act)
}

func (s *CasbinService) seed(log *zap.Logger) error {
	policies, err := s.E.GetPolicy()
	if err != nil {
		return fmt.Errorf("casbin get policy: %w", err)
	}
	if len(policies) > 0 {
		return nil
	}
	if _, err := s.E.AddPolicies(DefaultPolicies); err != nil {
		return fmt.Errorf("casbin seed policies: %w", err)
	}
	if log != nil {
		log.Info("casbin: seeded default policies", zap.Int("count", len(DefaultPolicies)))
	}
	return nil
}
