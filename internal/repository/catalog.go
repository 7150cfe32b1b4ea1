package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/ndc-feature-tracker/internal/model"
)

// Catalog bundles the three catalog repositories and exposes the read-only
// listing surface used by the chat context builder.
type Catalog struct {
	Airlines        *AirlineRepo
	Features        *FeatureRepo
	Implementations *ImplementationRepo
}

func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{
		Airlines:        NewAirlineRepo(db),
		Features:        NewFeatureRepo(db),
		Implementations: NewImplementationRepo(db),
	}
}

func (c *Catalog) ListAirlines(ctx context.Context) ([]model.Airline, error) {
	return c.Airlines.List(ctx)
}

func (c *Catalog) ListFeatures(ctx context.Context) ([]model.Feature, error) {
	return c.Features.List(ctx)
}

func (c *Catalog) ListImplementations(ctx context.Context) ([]model.Implementation, error) {
	return c.Implementations.List(ctx)
}
