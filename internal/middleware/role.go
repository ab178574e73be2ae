package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole enforces that the authenticated user's role is in the given
// allow-list. It must run after Protect; a missing identity or a role
// outside the set yields 403. Ownership rules (creator-or-admin on a
// specific record) stay with the handlers since they need the record.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok || !allowed[u.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{
					"status": "error", "message": "you do not have permission to perform this action",
				})
			}
			return next(c)
		}
	}
}
