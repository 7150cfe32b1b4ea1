package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ndc-feature-tracker/internal/handler"
)

// RegisterChat registers /api/chat.  limiter guards the routes that reach
// the model.
func RegisterChat(e *echo.Echo, h *handler.ChatHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/chat")
	g.POST("", h.Send, limiter)
	g.GET("/health", h.Health, limiter)
	g.GET("/examples", h.Examples)
}
