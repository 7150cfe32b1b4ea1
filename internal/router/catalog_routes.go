package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ndc-feature-tracker/internal/handler"
	"github.com/iliyamo/ndc-feature-tracker/internal/middleware"
)

// Catalog bundles what the catalog routes need.
type Catalog struct {
	Airlines        *handler.AirlineHandler
	Features        *handler.FeatureHandler
	Implementations *handler.ImplementationHandler
	Cache           *middleware.ResponseCache
	AuthEnabled     bool
	JWTSecret       string
}

// RegisterCatalog registers /api/airlines, /api/features and
// /api/implementations.  Reads go through the response cache; writes need a
// writer role when auth is enabled and clear the cache on success.
func RegisterCatalog(e *echo.Echo, cat Catalog) {
	g := e.Group("/api")
	read := cat.Cache.Middleware()
	write := append(middleware.CatalogWriters(cat.AuthEnabled, cat.JWTSecret), cat.Cache.InvalidateOnWrite())

	a := cat.Airlines
	g.GET("/airlines", a.List, read)
	g.GET("/airlines/:id", a.Get, read)
	g.GET("/airlines/:id/implementations", a.Implementations, read)
	g.POST("/airlines", a.Create, write...)
	g.PUT("/airlines/:id", a.Update, write...)
	g.DELETE("/airlines/:id", a.Delete, write...)

	f := cat.Features
	g.GET("/features", f.List, read)
	g.GET("/features/:id", f.Get, read)
	g.GET("/features/:id/implementations", f.Implementations, read)
	g.POST("/features", f.Create, write...)
	g.PUT("/features/:id", f.Update, write...)
	g.DELETE("/features/:id", f.Delete, write...)

	im := cat.Implementations
	g.GET("/implementations", im.List, read)
	g.GET("/implementations/:id", im.Get, read)
	g.GET("/implementations/:airlineId/:featureId", im.GetByPair, read)
	g.POST("/implementations", im.Create, write...)
	g.PUT("/implementations/:airlineId/:featureId", im.Update, write...)
	g.DELETE("/implementations/:airlineId/:featureId", im.Delete, write...)
}
