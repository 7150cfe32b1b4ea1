package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ndc-feature-tracker/internal/model"
	"github.com/iliyamo/ndc-feature-tracker/internal/utils"
)

// RequireRole rejects requests whose role claim is not in roles.  It runs
// after JWTAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(utils.ContextRole).(string)
			if !allowed[role] {
				return c.JSON(http.StatusForbidden, map[string]any{
					"success": false, "error": "Forbidden", "message": "Your role may not modify the catalog",
				})
			}
			return next(c)
		}
	}
}

// CatalogWriters guards catalog writes: a valid token with role ADMIN or
// EDITOR when auth is enabled, nothing otherwise.
func CatalogWriters(authEnabled bool, secret string) []echo.MiddlewareFunc {
	if !authEnabled {
		return nil
	}
	return []echo.MiddlewareFunc{JWTAuth(secret), RequireRole(model.RoleAdmin, model.RoleEditor)}
}
