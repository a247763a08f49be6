package handler

import (
	"github.com/labstack/echo/v4"

	"gatepass/internal/auth"
	"gatepass/internal/errors"
	"gatepass/internal/service"
)

const (
	// ClaimsContextKey is where the bearer middleware stores *auth.Claims.
	ClaimsContextKey = "user"
	roleContextKey   = "role"
)

// ClaimsFromContext returns the verified session claims of the request.
func ClaimsFromContext(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// RoleFromContext returns the role resolved by RequireRoles.
func RoleFromContext(c echo.Context) (auth.Role, bool) {
	role, ok := c.Get(roleContextKey).(auth.Role)
	return role, ok
}

// RequireRoles resolves the caller's role and rejects roles outside allowed.
// With no roles listed any authenticated caller passes.
func RequireRoles(authorizer service.Authorizer, allowed ...auth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFromContext(c)
			if !ok {
				return respondError(errors.ErrUnauthorized)
			}
			role, err := authorizer.Authorize(c.Request().Context(), claims, allowed...)
			if err != nil {
				return respondError(err)
			}
			c.Set(roleContextKey, role)
			return next(c)
		}
	}
}
