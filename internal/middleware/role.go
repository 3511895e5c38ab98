package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/arisehq/arise-api/internal/model"
)

// RequireRole returns middleware that enforces that a resolved identity is
// present and, when roles are given, holds one of them.  The two failure
// modes are deliberately distinct: no identity yields 401, an identity with
// an insufficient role yields 403.  Bodies carry a short generic message
// and never say why resolution failed internally.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id, ok := CurrentIdentity(c)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
            }
            if len(allowed) > 0 && !allowed[id.Role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient role"})
            }
            return next(c)
        }
    }
}

// RequireAuth admits any authenticated user.
func RequireAuth() echo.MiddlewareFunc { return RequireRole() }

// RequireCoach admits coaches and admins.
func RequireCoach() echo.MiddlewareFunc { return RequireRole(model.RoleCoach, model.RoleAdmin) }

// RequireAdmin admits admins only.
func RequireAdmin() echo.MiddlewareFunc { return RequireRole(model.RoleAdmin) }
