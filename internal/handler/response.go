package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ndc-feature-tracker/internal/utils"
)

// envelope is the body of every /api response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func respond(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, envelope{Success: true, Data: data, Message: message})
}

func fail(c echo.Context, status int, errText, message string) error {
	return c.JSON(status, envelope{Success: false, Error: errText, Message: message})
}

func validationFailed(c echo.Context, message string) error {
	return fail(c, http.StatusBadRequest, "Validation failed", message)
}

func notFound(c echo.Context, message string) error {
	return fail(c, http.StatusNotFound, "Not found", message)
}

func conflict(c echo.Context, message string) error {
	return fail(c, http.StatusConflict, "Conflict", message)
}

func internal(c echo.Context, message string) error {
	return fail(c, http.StatusInternalServerError, "Internal server error", message)
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name, label string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%s must be a positive integer", label)
	}
	return id, nil
}

// actor identifies the caller for audit events; empty when auth is off.
func actor(c echo.Context) string {
	if id, ok := c.Get(utils.ContextUserID).(uint64); ok {
		return strconv.FormatUint(id, 10)
	}
	return ""
}
