package auth

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

// Identity is the authenticated caller as supplied by the identity
// provider: who they are and what role they hold.
type Identity struct {
	Sub  types.MemberID
	Name string
	Role types.Role
}

// NewAnonymous returns the identity used in no-auth development mode
func NewAnonymous(sub types.MemberID, role types.Role) *Identity {
	if sub == "" {
		sub = "anonymous"
	}
	if !role.IsValid() {
		role = types.RoleMember
	}
	return &Identity{Sub: sub, Name: "anonymous", Role: role}
}

type ctxKey struct{}

// ContextWithIdentity attaches the identity to the context
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext extracts the identity from the context
func IdentityFromContext(ctx context.Context) (*Identity, error) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	if !ok || id == nil {
		return nil, goerr.New("no identity in context")
	}
	return id, nil
}
