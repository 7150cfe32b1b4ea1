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

const categoryMessage = "Category must be one of: Shopping, Global, Booking, Servicing, Payment"

var featureCategoryValues = func() []string {
	out := make([]string, len(model.FeatureCategories))
	for i, c := range model.FeatureCategories {
		out[i] = string(c)
	}
	return out
}()

var createFeatureSchema = mustSchema(object(map[string]any{
	"category":    enum(featureCategoryValues...),
	"name":        text(255),
	"description": nullableText(1000),
}, "category", "name"), map[string]string{
	rootField:     bodyMustBeObject,
	"category":    categoryMessage,
	"name":        "Name is required and must be less than 255 characters",
	"description": "Description must be less than 1000 characters",
})

var updateFeatureSchema = mustSchema(object(map[string]any{
	"category":    enum(featureCategoryValues...),
	"name":        text(255),
	"description": nullableText(1000),
}), map[string]string{
	rootField:     bodyMustBeObject,
	"category":    categoryMessage,
	"name":        "Name must be less than 255 characters",
	"description": "Description must be less than 1000 characters",
})

type featureBody struct {
	Category    *model.FeatureCategory `json:"category"`
	Name        *string                `json:"name"`
	Description optionalString         `json:"description"`
}

// FeatureHandler serves /api/features.
type FeatureHandler struct {
	Features *repository.FeatureRepo
	Notifier ChangeNotifier
	Log      *zap.Logger
}

func NewFeatureHandler(repo *repository.FeatureRepo, n ChangeNotifier, log *zap.Logger) *FeatureHandler {
	return &FeatureHandler{Features: repo, Notifier: n, Log: log}
}

func (h *FeatureHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	features, err := h.Features.List(ctx)
	if err != nil {
		h.Log.Error("list features", zap.Error(err))
		return internal(c, "Failed to fetch features")
	}
	return respond(c, http.StatusOK, features, fmt.Sprintf("Found %d features", len(features)))
}

func (h *FeatureHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id", "ID")
	if err != nil {
		return validationFailed(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	f, err := h.Features.GetByID(ctx, id)
	if err != nil {
		return h.readError(c, err, id, "Failed to fetch feature")
	}
	return respond(c, http.StatusOK, f, "")
}

func (h *FeatureHandler) Implementations(c echo.Context) error {
	id, err := parseID(c, "id", "ID")
	if err != nil {
		return validationFailed(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	f, err := h.Features.WithImplementations(ctx, id)
	if err != nil {
		return h.readError(c, err, id, "Failed to fetch feature with implementations")
	}
	return respond(c, http.StatusOK, f, "")
}

func (h *FeatureHandler) Create(c echo.Context) error {
	var body featureBody
	if err := createFeatureSchema.bind(c, &body); err != nil {
		msg, _ := asValidation(err)
		return validationFailed(c, msg)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	f, err := h.Features.Create(ctx, model.Feature{
		Category:    *body.Category,
		Name:        *trimmed(body.Name),
		Description: body.Description.Value,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return conflict(c, "A feature with this name already exists")
		}
		h.Log.Error("create feature", zap.Error(err))
		return internal(c, "Failed to create feature")
	}
	h.Notifier.Changed(queue.CatalogChangedEvent{
		Entity: queue.EntityFeature, Action: queue.ActionCreated, ID: f.ID, Name: f.Name, Actor: actor(c),
	})
	return respond(c, http.StatusCreated, f, "Feature created successfully")
}

// Update handles PUT /api/features/:id.  "description": null clears the
// description.
func (h *FeatureHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id", "ID")
	if err != nil {
		return validationFailed(c, err.Error())
	}
	var body featureBody
	if err := updateFeatureSchema.bind(c, &body); err != nil {
		msg, _ := asValidation(err)
		return validationFailed(c, msg)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	f, err := h.Features.Update(ctx, id, repository.FeatureUpdate{
		Category:         body.Category,
		Name:             trimmed(body.Name),
		Description:      body.Description.Value,
		ClearDescription: body.Description.Set && body.Description.Value == nil,
	})
	switch {
	case errors.Is(err, repository.ErrFeatureNotFound):
		return notFound(c, fmt.Sprintf("Feature with ID %d not found", id))
	case errors.Is(err, repository.ErrDuplicate):
		return conflict(c, "A feature with this name already exists")
	case err != nil:
		h.Log.Error("update feature", zap.Uint64("id", id), zap.Error(err))
		return internal(c, "Failed to update feature")
	}
	h.Notifier.Changed(queue.CatalogChangedEvent{
		Entity: queue.EntityFeature, Action: queue.ActionUpdated, ID: f.ID, Name: f.Name, Actor: actor(c),
	})
	return respond(c, http.StatusOK, f, "Feature updated successfully")
}

func (h *FeatureHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id", "ID")
	if err != nil {
		return validationFailed(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Features.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrFeatureNotFound) {
			return notFound(c, fmt.Sprintf("Feature with ID %d not found", id))
		}
		h.Log.Error("delete feature", zap.Uint64("id", id), zap.Error(err))
		return internal(c, "Failed to delete feature")
	}
	h.Notifier.Changed(queue.CatalogChangedEvent{
		Entity: queue.EntityFeature, Action: queue.ActionDeleted, ID: id, Actor: actor(c),
	})
	return respond(c, http.StatusOK, nil, "Feature deleted successfully")
}

func (h *FeatureHandler) readError(c echo.Context, err error, id uint64, message string) error {
	if errors.Is(err, repository.ErrFeatureNotFound) {
		return notFound(c, fmt.Sprintf("Feature with ID %d not found", id))
	}
	h.Log.Error("read feature", zap.Uint64("id", id), zap.Error(err))
	return internal(c, message)
}
