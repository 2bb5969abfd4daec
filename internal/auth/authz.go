package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Objects and actions checked by the HTTP layer.
const (
	ObjectCompanies   = "companies"
	ObjectBranches    = "branches"
	ObjectDivisions   = "divisions"
	ObjectDepartments = "departments"
	ObjectStructure   = "structure"
	ObjectAPIKeys     = "apikeys"
	ObjectUsers       = "users"

	ActionRead  = "read"
	ActionWrite = "write"
)

const authzModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// Authorizer wraps a casbin enforcer loaded with the built-in policy.
type Authorizer struct {
	enforcer *casbin.Enforcer
}

func NewAuthorizer() (*Authorizer, error) {
	m, err := model.NewModelFromString(authzModel)
	if err != nil {
		return nil, fmt.Errorf("authz: load model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: new enforcer: %w", err)
	}

	var policies [][]string
	for _, obj := range []string{ObjectCompanies, ObjectBranches, ObjectDivisions, ObjectDepartments, ObjectStructure} {
		policies = append(policies, []string{"role:viewer", obj, ActionRead})
	}
	for _, obj := range []string{ObjectCompanies, ObjectBranches, ObjectDivisions, ObjectDepartments} {
		policies = append(policies, []string{"role:editor", obj, ActionWrite})
	}
	policies = append(policies, []string{"role:admin", "*", "*"})

	if _, err := e.AddPolicies(policies); err != nil {
		return nil, fmt.Errorf("authz: add policies: %w", err)
	}
	if _, err := e.AddGroupingPolicies([][]string{
		{"role:editor", "role:viewer"},
		{"apikey:read", "role:viewer"},
		{"apikey:write", "role:editor"},
	}); err != nil {
		return nil, fmt.Errorf("authz: add role links: %w", err)
	}

	return &Authorizer{enforcer: e}, nil
}

func (a *Authorizer) Authorize(subject, object, action string) (bool, error) {
	return a.enforcer.Enforce(subject, object, action)
}

func RoleSubject(role string) string { return "role:" + role }

func APIKeySubject(permission string) string { return "apikey:" + permission }
