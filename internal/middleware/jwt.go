package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ndc-feature-tracker/internal/utils"
)

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, map[string]any{
		"success": false, "error": "Unauthorized", "message": message,
	})
}

// JWTAuth validates a Bearer access token and stores its subject and role
// under utils.ContextUserID and utils.ContextRole.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			if !ok {
				return unauthorized(c, "Missing bearer token")
			}
			cl, err := utils.ParseAccessToken(secret, strings.TrimSpace(raw))
			if err != nil {
				return unauthorized(c, "Invalid or expired token")
			}
			c.Set(utils.ContextUserID, cl.UserID)
			c.Set(utils.ContextRole, cl.Role)
			return next(c)
		}
	}
}

// OptionalJWT behaves like JWTAuth when enabled and passes every request
// through otherwise.
func OptionalJWT(enabled bool, secret string) echo.MiddlewareFunc {
	if !enabled {
		return passThrough
	}
	return JWTAuth(secret)
}
