package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/ndc-feature-tracker/internal/model"
)

// Store is the read surface of the catalog.  Lists come back in the store's
// default order; the general and comparison samples depend on it.
type Store interface {
	ListAirlines(ctx context.Context) ([]model.Airline, error)
	ListFeatures(ctx context.Context) ([]model.Feature, error)
	ListImplementations(ctx context.Context) ([]model.Implementation, error)
}

const (
	comparisonSampleSize = 15
	generalSampleSize    = 10
	fallbackListSize     = 5
)

// Builder selects and enriches the catalog rows relevant to a question.
type Builder struct {
	store Store
	log   *zap.Logger
}

func NewBuilder(store Store, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{store: store, log: log}
}

// Build returns the enriched implementations followed by one airlines marker
// and one features marker.  Store failures are logged and degrade the result
// to at most five airlines and five features with no implementations; Build
// never returns an error.
func (b *Builder) Build(ctx context.Context, e Entities) []ContextItem {
	items, err := b.build(ctx, e)
	if err != nil {
		b.log.Error("building chat context failed, using fallback",
			zap.String("query_type", string(e.QueryType)), zap.Error(err))
		return b.fallback(ctx)
	}
	return items
}

func (b *Builder) build(ctx context.Context, e Entities) ([]ContextItem, error) {
	var (
		airlines []model.Airline
		features []model.Feature
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		airlines, err = b.store.ListAirlines(gctx)
		return err
	})
	g.Go(func() (err error) {
		features, err = b.store.ListFeatures(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	relevantAirlines := filterAirlines(airlines, e.Airlines)
	relevantFeatures := filterFeatures(features, e.Features)

	selected, err := b.selectImplementations(ctx, e, relevantAirlines, relevantFeatures)
	if err != nil {
		return nil, err
	}

	airlineByID := make(map[uint64]model.Airline, len(airlines))
	for _, a := range airlines {
		airlineByID[a.ID] = a
	}
	featureByID := make(map[uint64]model.Feature, len(features))
	for _, f := range features {
		featureByID[f.ID] = f
	}

	out := make([]ContextItem, 0, len(selected)+2)
	for _, im := range selected {
		out = append(out, implementationItem(enrich(im, airlineByID, featureByID)))
	}
	out = append(out, airlinesItem(relevantAirlines), featuresItem(relevantFeatures))
	return out, nil
}

// selectImplementations applies the per-intent selection.  The
// implementations table is only read when a selection can be non-empty.
func (b *Builder) selectImplementations(ctx context.Context, e Entities, airlines []model.Airline, features []model.Feature) ([]model.Implementation, error) {
	switch e.QueryType {
	case AirlineFeatures:
		if len(airlines) == 0 || len(features) == 0 {
			return nil, nil
		}
		aIDs, fIDs := airlineIDs(airlines), featureIDs(features)
		return b.filter(ctx, func(im model.Implementation) bool {
			return aIDs[im.AirlineID] && fIDs[im.FeatureID]
		})

	case FeatureAirlines:
		if len(features) == 0 {
			return nil, nil
		}
		fIDs := featureIDs(features)
		return b.filter(ctx, func(im model.Implementation) bool { return fIDs[im.FeatureID] })

	case Comparison:
		switch {
		case len(features) > 0:
			fIDs := featureIDs(features)
			return b.filter(ctx, func(im model.Implementation) bool { return fIDs[im.FeatureID] })
		case len(airlines) > 0:
			aIDs := airlineIDs(airlines)
			return b.filter(ctx, func(im model.Implementation) bool { return aIDs[im.AirlineID] })
		default:
			return b.sample(ctx, comparisonSampleSize)
		}

	case StatusQuery:
		if len(e.Statuses) == 0 {
			return nil, nil
		}
		return b.filter(ctx, func(im model.Implementation) bool {
			return containsAny(strings.ToLower(im.Value), e.Statuses...)
		})

	case ProviderQuery:
		byProvider := make([]model.Airline, 0)
		for _, a := range airlines {
			if containsAny(strings.ToLower(a.Provider), e.Providers...) {
				byProvider = append(byProvider, a)
			}
		}
		if len(byProvider) == 0 {
			return nil, nil
		}
		aIDs := airlineIDs(byProvider)
		return b.filter(ctx, func(im model.Implementation) bool { return aIDs[im.AirlineID] })

	default:
		return b.sample(ctx, generalSampleSize)
	}
}

func (b *Builder) filter(ctx context.Context, keep func(model.Implementation) bool) ([]model.Implementation, error) {
	all, err := b.store.ListImplementations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Implementation, 0)
	for _, im := range all {
		if keep(im) {
			out = append(out, im)
		}
	}
	return out, nil
}

func (b *Builder) sample(ctx context.Context, n int) ([]model.Implementation, error) {
	all, err := b.store.ListImplementations(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// fallback re-reads airlines and features independently; a list whose read
// fails again is left empty.
func (b *Builder) fallback(ctx context.Context) []ContextItem {
	airlines, err := b.store.ListAirlines(ctx)
	if err != nil {
		b.log.Warn("fallback airline read failed", zap.Error(err))
		airlines = nil
	}
	features, err := b.store.ListFeatures(ctx)
	if err != nil {
		b.log.Warn("fallback feature read failed", zap.Error(err))
		features = nil
	}
	if len(airlines) > fallbackListSize {
		airlines = airlines[:fallbackListSize]
	}
	if len(features) > fallbackListSize {
		features = features[:fallbackListSize]
	}
	return []ContextItem{airlinesItem(airlines), featuresItem(features)}
}

// filterAirlines keeps airlines whose lowercased name contains a key or whose
// uppercased codes contain the uppercased key.  No keys keeps everything.
func filterAirlines(all []model.Airline, keys []string) []model.Airline {
	if len(keys) == 0 {
		return all
	}
	out := make([]model.Airline, 0)
	for _, a := range all {
		name := strings.ToLower(a.Name)
		codes := strings.ToUpper(a.Codes)
		for _, k := range keys {
			if strings.Contains(name, k) || strings.Contains(codes, strings.ToUpper(k)) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// filterFeatures keeps features whose lowercased name contains a key or is
// contained in one.
func filterFeatures(all []model.Feature, keys []string) []model.Feature {
	if len(keys) == 0 {
		return all
	}
	out := make([]model.Feature, 0)
	for _, f := range all {
		name := strings.ToLower(f.Name)
		for _, k := range keys {
			if strings.Contains(name, k) || strings.Contains(k, name) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func airlineIDs(list []model.Airline) map[uint64]bool {
	ids := make(map[uint64]bool, len(list))
	for _, a := range list {
		ids[a.ID] = true
	}
	return ids
}

func featureIDs(list []model.Feature) map[uint64]bool {
	ids := make(map[uint64]bool, len(list))
	for _, f := range list {
		ids[f.ID] = true
	}
	return ids
}

func enrich(im model.Implementation, airlines map[uint64]model.Airline, features map[uint64]model.Feature) EnrichedImplementation {
	e := EnrichedImplementation{
		ID:                 im.ID,
		AirlineID:          im.AirlineID,
		FeatureID:          im.FeatureID,
		Value:              im.Value,
		Notes:              im.Notes,
		CreatedAt:          im.CreatedAt,
		UpdatedAt:          im.UpdatedAt,
		AirlineName:        fmt.Sprintf(unknownAirlineFormat, im.AirlineID),
		AirlineCodes:       unknownField,
		AirlineProvider:    unknownField,
		AirlineStatus:      unknownField,
		FeatureName:        fmt.Sprintf(unknownFeatureFormat, im.FeatureID),
		FeatureCategory:    unknownField,
		FeatureDescription: noDescription,
	}
	if a, ok := airlines[im.AirlineID]; ok {
		e.AirlineName = a.Name
		e.AirlineCodes = a.Codes
		e.AirlineProvider = a.Provider
		e.AirlineStatus = string(a.Status)
	}
	if f, ok := features[im.FeatureID]; ok {
		e.FeatureName = f.Name
		e.FeatureCategory = string(f.Category)
		if f.Description != nil && *f.Description != "" {
			e.FeatureDescription = *f.Description
		}
	}
	return e
}
