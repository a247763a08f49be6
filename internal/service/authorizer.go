package service

import (
	"context"

	"gatepass/internal/auth"
	"gatepass/internal/errors"
)

// Authorizer decides whether a session may use an operation.
type Authorizer interface {
	Authorize(ctx context.Context, claims *auth.Claims, allowed ...auth.Role) (auth.Role, error)
}

type authorizer struct {
	users UserService
}

// NewAuthorizer builds an Authorizer that falls back to the stored role
// when the session carries none.
func NewAuthorizer(users UserService) Authorizer {
	return &authorizer{users: users}
}

// Authorize resolves the session's role and checks it against allowed.
// With no allowed roles any resolved role passes.
func (a *authorizer) Authorize(ctx context.Context, claims *auth.Claims, allowed ...auth.Role) (auth.Role, error) {
	if claims == nil {
		return "", errors.ErrUnauthorized
	}

	role, err := auth.ResolveRole(claims.Role, func() (string, bool, error) {
		id, err := claims.UserID()
		if err != nil {
			return "", false, nil
		}
		user, err := a.users.GetUser(ctx, id)
		if errors.Is(err, errors.ErrUserNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return user.Role, true, nil
	})
	if err != nil {
		return "", err
	}

	if len(allowed) > 0 && !role.In(allowed...) {
		return role, errors.ErrForbidden
	}
	return role, nil
}
