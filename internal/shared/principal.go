package shared

import "context"

// Grant is a caller's permission unit for one assignment with its four
// action booleans. Read is forced true whenever a mutating grant is held.
type Grant struct {
	Assignment string `json:"assignment"`
	Create     bool   `json:"create"`
	Read       bool   `json:"read"`
	Update     bool   `json:"update"`
	Delete     bool   `json:"delete"`
}

// Normalize coerces the read bit: create, update or delete imply read.
func (g Grant) Normalize() Grant {
	if g.Create || g.Update || g.Delete {
		g.Read = true
	}
	return g
}

// Principal is the resolved caller identity handed to every guarded call.
type Principal struct {
	ID       string  `json:"id"`
	Role     string  `json:"role"`
	ClientID string  `json:"client_id"`
	Grants   []Grant `json:"grants"`
}

// GrantFor returns the grant covering the named assignment, if any.
func (p Principal) GrantFor(assignment string) (Grant, bool) {
	for _, g := range p.Grants {
		if g.Assignment == assignment {
			return g, true
		}
	}
	return Grant{}, false
}

type principalContextKey struct{}

// ContextWithPrincipal stores the caller identity in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the caller identity from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
