package query

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/iliyamo/ndc-feature-tracker/internal/model"
)

func strptr(s string) *string { return &s }

// fakeStore serves a fixed catalog shaped like the seed data.
type fakeStore struct {
	airlines        []model.Airline
	features        []model.Feature
	implementations []model.Implementation

	airlinesErr, featuresErr, implementationsErr error

	implementationReads atomic.Int32
}

func (s *fakeStore) ListAirlines(context.Context) ([]model.Airline, error) {
	if s.airlinesErr != nil {
		return nil, s.airlinesErr
	}
	return s.airlines, nil
}

func (s *fakeStore) ListFeatures(context.Context) ([]model.Feature, error) {
	if s.featuresErr != nil {
		return nil, s.featuresErr
	}
	return s.features, nil
}

func (s *fakeStore) ListImplementations(context.Context) ([]model.Implementation, error) {
	s.implementationReads.Add(1)
	if s.implementationsErr != nil {
		return nil, s.implementationsErr
	}
	return s.implementations, nil
}

func newFakeStore() *fakeStore {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &fakeStore{
		airlines: []model.Airline{
			{ID: 1, Name: "American Airlines", Codes: "AA", Provider: "Sabre", Status: model.AirlineProduction},
			{ID: 2, Name: "Lufthansa Group", Codes: "LH, OS, SN, LX, EN, 4Y", Provider: "Altea NDC", Status: model.AirlineProduction},
			{ID: 3, Name: "Delta Air Lines", Codes: "DL", Provider: "Accelya (Former Farelogix)", Status: model.AirlineProduction},
			{ID: 4, Name: "United Airlines", Codes: "UA", Provider: "Sabre", Status: model.AirlinePilot},
			{ID: 5, Name: "British Airways", Codes: "BA", Provider: "Amadeus", Status: model.AirlineProduction},
		},
		features: []model.Feature{
			{ID: 1, Category: model.CategoryShopping, Name: "Dynamic pricing", Description: strptr("Real-time pricing based on demand and availability")},
			{ID: 2, Category: model.CategoryShopping, Name: "Seat selection", Description: strptr("Ability to select specific seats during booking")},
			{ID: 3, Category: model.CategoryShopping, Name: "Baggage options"},
			{ID: 4, Category: model.CategoryGlobal, Name: "Unaccompanied minors", Description: strptr("")},
			{ID: 5, Category: model.CategoryGlobal, Name: "Pet transportation", Description: strptr("Options for pet travel arrangements")},
			{ID: 6, Category: model.CategoryBooking, Name: "Multi-passenger booking"},
			{ID: 7, Category: model.CategoryBooking, Name: "Group bookings"},
		},
	}
	values := [][]string{
		{"Yes", "Yes", "Yes", "Yes", "No"},
		{"Yes", "Yes", "Yes", "Limited", "Yes"},
		{"Yes", "Yes", "Yes", "Yes", "Limited"},
		{"Pilot", "Yes", "No", "No", "No"},
		{"Yes", "Yes", "Yes", "Yes", "Yes"},
	}
	id := uint64(1)
	for a := range values {
		for f, v := range values[a] {
			s.implementations = append(s.implementations, model.Implementation{
				ID: id, AirlineID: uint64(a + 1), FeatureID: uint64(f + 1), Value: v, CreatedAt: ts, UpdatedAt: ts,
			})
			id++
		}
	}
	s.implementations[1].Notes = strptr("Standard seat selection available")
	return s
}

func implementationsOf(items []ContextItem) []*EnrichedImplementation {
	var out []*EnrichedImplementation
	for _, it := range items {
		if it.Kind == KindImplementation {
			out = append(out, it.Implementation)
		}
	}
	return out
}
