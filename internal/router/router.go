// Package router registers every HTTP route on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/ndc-feature-tracker/internal/handler"
	"github.com/iliyamo/ndc-feature-tracker/internal/middleware"
)

// RegisterRoutes registers the probes, the API index and the metrics
// endpoint.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", handler.Live)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/api", handler.Index)
	e.GET("/api/health", h.Health)
}

// RegisterAuth registers the account endpoints.  /api/me requires a valid
// access token of any role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	e.GET("/api/me", a.Me, middleware.JWTAuth(jwtSecret))
}
