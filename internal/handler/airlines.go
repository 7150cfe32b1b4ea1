package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/ndc-feature-tracker/internal/model"
	"github.com/iliyamo/ndc-feature-tracker/internal/queue"
	"github.com/iliyamo/ndc-feature-tracker/internal/repository"
)

// ChangeNotifier is told about every successful catalog write.
type ChangeNotifier interface {
	Changed(ev queue.CatalogChangedEvent) <-chan struct{}
}

const dbTimeout = 5 * time.Second

var statusMessage = "Status must be one of: Production, Pilot, Development, Inactive"

var airlineStatusValues = func() []string {
	out := make([]string, len(model.AirlineStatuses))
	for i, s := range model.AirlineStatuses {
		out[i] = string(s)
	}
	return out
}()

var createAirlineSchema = mustSchema(object(map[string]any{
	"name":     text(255),
	"codes":    text(100),
	"provider": text(255),
	"status":   enum(airlineStatusValues...),
}, "name", "codes", "provider", "status"), map[string]string{
	rootField:  bodyMustBeObject,
	"name":     "Name is required and must be less than 255 characters",
	"codes":    "Codes are required and must be less than 100 characters",
	"provider": "Provider is required and must be less than 255 characters",
	"status":   statusMessage,
})

var updateAirlineSchema = mustSchema(object(map[string]any{
	"name":     text(255),
	"codes":    text(100),
	"provider": text(255),
	"status":   enum(airlineStatusValues...),
}), map[string]string{
	rootField:  bodyMustBeObject,
	"name":     "Name must be less than 255 characters",
	"codes":    "Codes must be less than 100 characters",
	"provider": "Provider must be less than 255 characters",
	"status":   statusMessage,
})

type airlineBody struct {
	Name     *string              `json:"name"`
	Codes    *string              `json:"codes"`
	Provider *string              `json:"provider"`
	Status   *model.AirlineStatus `json:"status"`
}

// AirlineHandler serves /api/airlines.
type AirlineHandler struct {
	Airlines *repository.AirlineRepo
	Notifier ChangeNotifier
	Log      *zap.Logger
}

func NewAirlineHandler(repo *repository.AirlineRepo, n ChangeNotifier, log *zap.Logger) *AirlineHandler {
	return &AirlineHandler{Airlines: repo, Notifier: n, Log: log}
}

// List handles GET /api/airlines.
func (h *AirlineHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	airlines, err := h.Airlines.List(ctx)
	if err != nil {
		h.Log.Error("list airlines", zap.Error(err))
		return internal(c, "Failed to fetch airlines")
	}
	return respond(c, http.StatusOK, airlines, fmt.Sprintf("Found %d airlines", len(airlines)))
}

// Get handles GET /api/airlines/:id.
func (h *AirlineHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id", "ID")
	if err != nil {
		return validationFailed(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	a, err := h.Airlines.GetByID(ctx, id)
	if err != nil {
		return h.readError(c, err, id, "Failed to fetch airline")
	}
	return respond(c, http.StatusOK, a, "")
}

// Implementations handles GET /api/airlines/:id/implementations.
func (h *AirlineHandler) Implementations(c echo.Context) error {
	id, err := parseID(c, "id", "ID")
	if err != nil {
		return validationFailed(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	a, err := h.Airlines.WithImplementations(ctx, id)
	if err != nil {
		return h.readError(c, err, id, "Failed to fetch airline with implementations")
	}
	return respond(c, http.StatusOK, a, "")
}

// Create handles POST /api/airlines.
func (h *AirlineHandler) Create(c echo.Context) error {
	var body airlineBody
	if err := createAirlineSchema.bind(c, &body); err != nil {
		msg, _ := asValidation(err)
		return validationFailed(c, msg)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	a, err := h.Airlines.Create(ctx, model.Airline{
		Name:     *trimmed(body.Name),
		Codes:    *trimmed(body.Codes),
		Provider: *trimmed(body.Provider),
		Status:   *body.Status,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return conflict(c, "An airline with this name already exists")
		}
		h.Log.Error("create airline", zap.Error(err))
		return internal(c, "Failed to create airline")
	}
	h.Notifier.Changed(queue.CatalogChangedEvent{
		Entity: queue.EntityAirline, Action: queue.ActionCreated, ID: a.ID, Name: a.Name, Actor: actor(c),
	})
	return respond(c, http.StatusCreated, a, "Airline created successfully")
}

// Update handles PUT /api/airlines/:id.  Only fields present in the body
// change.
func (h *AirlineHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id", "ID")
	if err != nil {
		return validationFailed(c, err.Error())
	}
	var body airlineBody
	if err := updateAirlineSchema.bind(c, &body); err != nil {
		msg, _ := asValidation(err)
		return validationFailed(c, msg)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	a, err := h.Airlines.Update(ctx, id, repository.AirlineUpdate{
		Name:     trimmed(body.Name),
		Codes:    trimmed(body.Codes),
		Provider: trimmed(body.Provider),
		Status:   body.Status,
	})
	switch {
	case errors.Is(err, repository.ErrAirlineNotFound):
		return notFound(c, fmt.Sprintf("Airline with ID %d not found", id))
	case errors.Is(err, repository.ErrDuplicate):
		return conflict(c, "An airline with this name already exists")
	case err != nil:
		h.Log.Error("update airline", zap.Uint64("id", id), zap.Error(err))
		return internal(c, "Failed to update airline")
	}
	h.Notifier.Changed(queue.CatalogChangedEvent{
		Entity: queue.EntityAirline, Action: queue.ActionUpdated, ID: a.ID, Name: a.Name, Actor: actor(c),
	})
	return respond(c, http.StatusOK, a, "Airline updated successfully")
}

// Delete handles DELETE /api/airlines/:id.
func (h *AirlineHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id", "ID")
	if err != nil {
		return validationFailed(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Airlines.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrAirlineNotFound) {
			return notFound(c, fmt.Sprintf("Airline with ID %d not found", id))
		}
		h.Log.Error("delete airline", zap.Uint64("id", id), zap.Error(err))
		return internal(c, "Failed to delete airline")
	}
	h.Notifier.Changed(queue.CatalogChangedEvent{
		Entity: queue.EntityAirline, Action: queue.ActionDeleted, ID: id, Actor: actor(c),
	})
	return respond(c, http.StatusOK, nil, "Airline deleted successfully")
}

func (h *AirlineHandler) readError(c echo.Context, err error, id uint64, message string) error {
	if errors.Is(err, repository.ErrAirlineNotFound) {
		return notFound(c, fmt.Sprintf("Airline with ID %d not found", id))
	}
	h.Log.Error("read airline", zap.Uint64("id", id), zap.Error(err))
	return internal(c, message)
}
