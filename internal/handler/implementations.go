package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/ndc-feature-tracker/internal/model"
	"github.com/iliyamo/ndc-feature-tracker/internal/queue"
	"github.com/iliyamo/ndc-feature-tracker/internal/repository"
)

var createImplementationSchema = mustSchema(object(map[string]any{
	"airline_id": positiveInt(),
	"feature_id": positiveInt(),
	"value":      text(255),
	"notes":      nullableText(1000),
}, "airline_id", "feature_id", "value"), map[string]string{
	rootField:    bodyMustBeObject,
	"airline_id": "Airline ID must be a positive integer",
	"feature_id": "Feature ID must be a positive integer",
	"value":      "Value is required and must be less than 255 characters",
	"notes":      "Notes must be less than 1000 characters",
})

var updateImplementationSchema = mustSchema(object(map[string]any{
	"value": text(255),
	"notes": nullableText(1000),
}), map[string]string{
	rootField: bodyMustBeObject,
	"value":   "Value must be less than 255 characters",
	"notes":   "Notes must be less than 1000 characters",
})

type implementationBody struct {
	AirlineID uint64         `json:"airline_id"`
	FeatureID uint64         `json:"feature_id"`
	Value     *string        `json:"value"`
	Notes     optionalString `json:"notes"`
}

// ImplementationHandler serves /api/implementations.  Rows are addressed
// either by id (reads) or by the airline/feature pair.
type ImplementationHandler struct {
	Implementations *repository.ImplementationRepo
	Airlines        *repository.AirlineRepo
	Features        *repository.FeatureRepo
	Notifier        ChangeNotifier
	Log             *zap.Logger
}

func NewImplementationHandler(impls *repository.ImplementationRepo, airlines *repository.AirlineRepo, features *repository.FeatureRepo, n ChangeNotifier, log *zap.Logger) *ImplementationHandler {
	return &ImplementationHandler{Implementations: impls, Airlines: airlines, Features: features, Notifier: n, Log: log}
}

func (h *ImplementationHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Implementations.List(ctx)
	if err != nil {
		h.Log.Error("list implementations", zap.Error(err))
		return internal(c, "Failed to fetch implementations")
	}
	return respond(c, http.StatusOK, list, fmt.Sprintf("Found %d implementations", len(list)))
}

func (h *ImplementationHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id", "ID")
	if err != nil {
		return validationFailed(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	im, err := h.Implementations.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrImplementationNotFound):
		return notFound(c, fmt.Sprintf("Implementation with ID %d not found", id))
	case err != nil:
		h.Log.Error("get implementation", zap.Uint64("id", id), zap.Error(err))
		return internal(c, "Failed to fetch implementation")
	}
	return respond(c, http.StatusOK, im, "")
}

// pair reads the :airlineId/:featureId path parameters.  Both are checked
// so the message lists every bad parameter.
func pair(c echo.Context) (uint64, uint64, error) {
	airlineID, aerr := parseID(c, "airlineId", "Airline ID")
	featureID, ferr := parseID(c, "featureId", "Feature ID")
	switch {
	case aerr != nil && ferr != nil:
		return 0, 0, fmt.Errorf("%s, %s", aerr, ferr)
	case aerr != nil:
		return 0, 0, aerr
	case ferr != nil:
		return 0, 0, ferr
	}
	return airlineID, featureID, nil
}

func pairNotFound(c echo.Context, airlineID, featureID uint64) error {
	return notFound(c, fmt.Sprintf("Implementation for airline %d and feature %d not found", airlineID, featureID))
}

func (h *ImplementationHandler) GetByPair(c echo.Context) error {
	airlineID, featureID, err := pair(c)
	if err != nil {
		return validationFailed(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	im, err := h.Implementations.GetByPair(ctx, airlineID, featureID)
	switch {
	case errors.Is(err, repository.ErrImplementationNotFound):
		return pairNotFound(c, airlineID, featureID)
	case err != nil:
		h.Log.Error("get implementation", zap.Uint64("airline_id", airlineID), zap.Uint64("feature_id", featureID), zap.Error(err))
		return internal(c, "Failed to fetch implementation")
	}
	return respond(c, http.StatusOK, im, "")
}

// Create handles POST /api/implementations.  An existing pair is a 409; a
// missing airline or feature is a 404.
func (h *ImplementationHandler) Create(c echo.Context) error {
	var body implementationBody
	if err := createImplementationSchema.bind(c, &body); err != nil {
		msg, _ := asValidation(err)
		return validationFailed(c, msg)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	duplicate := func() error {
		return conflict(c, fmt.Sprintf("Implementation for airline %d and feature %d already exists", body.AirlineID, body.FeatureID))
	}

	_, err := h.Implementations.GetByPair(ctx, body.AirlineID, body.FeatureID)
	switch {
	case err == nil:
		return duplicate()
	case !errors.Is(err, repository.ErrImplementationNotFound):
		h.Log.Error("check implementation", zap.Error(err))
		return internal(c, "Failed to create implementation")
	}

	if _, err := h.Airlines.GetByID(ctx, body.AirlineID); err != nil {
		return h.missingParent(c, err, repository.ErrAirlineNotFound, fmt.Sprintf("Airline with ID %d not found", body.AirlineID))
	}
	if _, err := h.Features.GetByID(ctx, body.FeatureID); err != nil {
		return h.missingParent(c, err, repository.ErrFeatureNotFound, fmt.Sprintf("Feature with ID %d not found", body.FeatureID))
	}

	im, err := h.Implementations.Create(ctx, model.Implementation{
		AirlineID: body.AirlineID,
		FeatureID: body.FeatureID,
		Value:     *trimmed(body.Value),
		Notes:     body.Notes.Value,
	})
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return duplicate()
	case errors.Is(err, repository.ErrConflict):
		return notFound(c, fmt.Sprintf("Airline %d or feature %d not found", body.AirlineID, body.FeatureID))
	case err != nil:
		h.Log.Error("create implementation", zap.Error(err))
		return internal(c, "Failed to create implementation")
	}
	h.Notifier.Changed(queue.CatalogChangedEvent{
		Entity: queue.EntityImplementation, Action: queue.ActionCreated, ID: im.ID,
		AirlineID: im.AirlineID, FeatureID: im.FeatureID, Name: im.Value, Actor: actor(c),
	})
	return respond(c, http.StatusCreated, im, "Implementation created successfully")
}

func (h *ImplementationHandler) missingParent(c echo.Context, err, sentinel error, message string) error {
	if errors.Is(err, sentinel) {
		return notFound(c, message)
	}
	h.Log.Error("check implementation parent", zap.Error(err))
	return internal(c, "Failed to create implementation")
}

func (h *ImplementationHandler) Update(c echo.Context) error {
	airlineID, featureID, err := pair(c)
	if err != nil {
		return validationFailed(c, err.Error())
	}
	var body implementationBody
	if err := updateImplementationSchema.bind(c, &body); err != nil {
		msg, _ := asValidation(err)
		return validationFailed(c, msg)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	im, err := h.Implementations.UpdateByPair(ctx, airlineID, featureID, repository.ImplementationUpdate{
		Value:      trimmed(body.Value),
		Notes:      body.Notes.Value,
		ClearNotes: body.Notes.Set && body.Notes.Value == nil,
	})
	switch {
	case errors.Is(err, repository.ErrImplementationNotFound):
		return pairNotFound(c, airlineID, featureID)
	case err != nil:
		h.Log.Error("update implementation", zap.Uint64("airline_id", airlineID), zap.Uint64("feature_id", featureID), zap.Error(err))
		return internal(c, "Failed to update implementation")
	}
	h.Notifier.Changed(queue.CatalogChangedEvent{
		Entity: queue.EntityImplementation, Action: queue.ActionUpdated, ID: im.ID,
		AirlineID: airlineID, FeatureID: featureID, Name: im.Value, Actor: actor(c),
	})
	return respond(c, http.StatusOK, im, "Implementation updated successfully")
}

func (h *ImplementationHandler) Delete(c echo.Context) error {
	airlineID, featureID, err := pair(c)
	if err != nil {
		return validationFailed(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Implementations.DeleteByPair(ctx, airlineID, featureID); err != nil {
		if errors.Is(err, repository.ErrImplementationNotFound) {
			return pairNotFound(c, airlineID, featureID)
		}
		h.Log.Error("delete implementation", zap.Uint64("airline_id", airlineID), zap.Uint64("feature_id", featureID), zap.Error(err))
		return internal(c, "Failed to delete implementation")
	}
	h.Notifier.Changed(queue.CatalogChangedEvent{
		Entity: queue.EntityImplementation, Action: queue.ActionDeleted,
		AirlineID: airlineID, FeatureID: featureID, Actor: actor(c),
	})
	return respond(c, http.StatusOK, nil, "Implementation deleted successfully")
}
