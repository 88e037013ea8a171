package usecase

import (
	"context"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stoa-lab/salescredit/pkg/domain/model/auth"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

// AuthUseCase verifies bearer tokens issued by the identity provider.
// Tokens are HS256-signed JWTs carrying the member ID as `sub` and the
// access level as `role`.
type AuthUseCase struct {
	secret     []byte
	noAuthSub  types.MemberID
	noAuthRole types.Role
}

// NewAuthUseCase creates a token-verifying auth use case
func NewAuthUseCase(secret []byte) *AuthUseCase {
	return &AuthUseCase{secret: secret}
}

// NewNoAuthn creates an auth use case that skips verification and acts
// as the given member (development only)
func NewNoAuthn(sub types.MemberID, role types.Role) *AuthUseCase {
	return &AuthUseCase{noAuthSub: sub, noAuthRole: role}
}

// IsNoAuthn returns true when verification is skipped
func (uc *AuthUseCase) IsNoAuthn() bool {
	return uc.noAuthSub != ""
}

// Verify validates the raw token and returns the caller's identity
func (uc *AuthUseCase) Verify(ctx context.Context, raw string) (*auth.Identity, error) {
	if uc.IsNoAuthn() {
		return auth.NewAnonymous(uc.noAuthSub, uc.noAuthRole), nil
	}

	token, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, uc.secret),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to verify token")
	}

	sub := token.Subject()
	if sub == "" {
		return nil, goerr.New("token has no subject")
	}

	identity := &auth.Identity{
		Sub:  types.MemberID(sub),
		Role: types.RoleMember,
	}

	if v, ok := token.Get("role"); ok {
		if s, ok := v.(string); ok {
			role := types.Role(s)
			if !role.IsValid() {
				return nil, goerr.New("token has invalid role", goerr.V("role", s))
			}
			identity.Role = role
		}
	}
	if v, ok := token.Get("name"); ok {
		if s, ok := v.(string); ok {
			identity.Name = s
		}
	}

	return identity, nil
}
