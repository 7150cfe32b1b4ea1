package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves liveness and readiness endpoints and the API index.
type HealthHandler struct {
	DB  Pinger
	now func() time.Time
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{DB: db, now: time.Now}
}

// Live is the plain-text probe used by load balancers.
func Live(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Health handles GET /api/health.  It reports 503 when the database does not
// answer a ping.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	body := echo.Map{
		"status":    "OK",
		"message":   "NDC Feature Tracker API is running",
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"database":  "up",
	}
	if err := h.DB.PingContext(ctx); err != nil {
		body["status"] = "DEGRADED"
		body["database"] = "down"
		return c.JSON(http.StatusServiceUnavailable, body)
	}
	return c.JSON(http.StatusOK, body)
}

// Index handles GET /api.
func Index(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "NDC Feature Tracker API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":          "/api/health",
			"airlines":        "/api/airlines",
			"features":        "/api/features",
			"implementations": "/api/implementations",
			"chat":            "/api/chat",
			"auth":            "/api/auth",
			"metrics":         "/metrics",
		},
	})
}
