package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole must run after JWTAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := CurrentUser(c)
			if p == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			for _, role := range roles {
				if p.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}
