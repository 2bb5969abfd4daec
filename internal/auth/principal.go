package auth

import (
	"context"

	"orgadmin/internal/models"
)

// Principal is the authenticated caller of a request: an admin user holding
// a JWT, or an API key.
type Principal struct {
	UserID   int
	Username string
	Role     models.Role
	APIKey   *models.APIKey
}

// Subject is the casbin subject for the principal.
func (p *Principal) Subject() string {
	if p.APIKey != nil {
		return APIKeySubject(p.APIKey.Permissions)
	}
	return RoleSubject(string(p.Role))
}

// Actor is recorded in created_by/updated_by audit columns.
func (p *Principal) Actor() string {
	if p.APIKey != nil {
		return "apikey:" + p.APIKey.Name
	}
	return p.Username
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored by the auth middleware.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
