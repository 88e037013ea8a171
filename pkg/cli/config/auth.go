package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
	"github.com/stoa-lab/salescredit/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Auth holds CLI flags for bearer token authentication
type Auth struct {
	secret     string
	noAuthSub  string
	noAuthRole string
}

// Flags returns CLI flags for auth configuration
func (a *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "auth-secret",
			Usage:       "HS256 signing secret for bearer token verification",
			Category:    "Authentication",
			Sources:     cli.EnvVars("SALESCREDIT_AUTH_SECRET"),
			Destination: &a.secret,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and run as the given member ID (development only). Example: --no-auth=member-001",
			Category:    "Authentication",
			Sources:     cli.EnvVars("SALESCREDIT_NO_AUTH"),
			Destination: &a.noAuthSub,
		},
		&cli.StringFlag{
			Name:        "no-auth-role",
			Usage:       "Role for the no-auth identity (member, staff or admin)",
			Value:       "member",
			Category:    "Authentication",
			Sources:     cli.EnvVars("SALESCREDIT_NO_AUTH_ROLE"),
			Destination: &a.noAuthRole,
		},
	}
}

// IsNoAuthMode returns true when authentication is skipped
func (a *Auth) IsNoAuthMode() bool {
	return a.noAuthSub != ""
}

// Configure builds the auth use case from the flags
func (a *Auth) Configure() (*usecase.AuthUseCase, error) {
	if a.noAuthSub != "" {
		role := types.Role(a.noAuthRole)
		if !role.IsValid() {
			return nil, goerr.New("invalid no-auth role", goerr.V("role", a.noAuthRole))
		}
		return usecase.NewNoAuthn(types.MemberID(a.noAuthSub), role), nil
	}

	if a.secret == "" {
		return nil, goerr.New("auth-secret is required unless no-auth mode is enabled")
	}
	return usecase.NewAuthUseCase([]byte(a.secret)), nil
}
