package query

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/ndc-feature-tracker/internal/model"
)

func build(t *testing.T, s Store, e Entities) []ContextItem {
	t.Helper()
	return NewBuilder(s, zaptest.NewLogger(t)).Build(context.Background(), e)
}

func TestBuild_MarkersCloseTheList(t *testing.T) {
	items := build(t, newFakeStore(), Entities{QueryType: General})
	require.GreaterOrEqual(t, len(items), 2)
	n := len(items)
	assert.Equal(t, KindAirlines, items[n-2].Kind)
	assert.Equal(t, KindFeatures, items[n-1].Kind)
	for _, it := range items[:n-2] {
		assert.Equal(t, KindImplementation, it.Kind)
	}
}

func TestBuild_AirlineFeatures(t *testing.T) {
	items := build(t, newFakeStore(), Entities{
		Airlines:  []string{"american"},
		Features:  []string{"seat selection"},
		QueryType: AirlineFeatures,
	})
	impls := implementationsOf(items)
	require.Len(t, impls, 1)
	assert.Equal(t, "American Airlines", impls[0].AirlineName)
	assert.Equal(t, "Seat selection", impls[0].FeatureName)
	require.NotNil(t, impls[0].Notes)

	n := len(items)
	require.Len(t, items[n-2].Airlines, 1)
	require.Len(t, items[n-1].Features, 1)
}

func TestBuild_AirlineFeaturesWithoutMatchKeepsMarkers(t *testing.T) {
	s := newFakeStore()
	items := build(t, s, Entities{
		Airlines:  []string{"qantas"},
		Features:  []string{"seat selection"},
		QueryType: AirlineFeatures,
	})
	require.Len(t, items, 2)
	assert.Equal(t, KindAirlines, items[0].Kind)
	assert.Empty(t, items[0].Airlines)
	assert.Equal(t, KindFeatures, items[1].Kind)
	assert.Len(t, items[1].Features, 1)
	assert.Equal(t, int32(0), s.implementationReads.Load())
}

func TestBuild_AirlineMatchesByCodes(t *testing.T) {
	// No feature key matches, so comparison narrows by airline instead.
	items := build(t, newFakeStore(), Entities{
		Airlines: []string{"lx"}, Features: []string{"warp drive"}, QueryType: Comparison,
	})
	impls := implementationsOf(items)
	require.Len(t, impls, 5)
	for _, im := range impls {
		assert.Equal(t, uint64(2), im.AirlineID)
	}
}

func TestBuild_Selection(t *testing.T) {
	cases := []struct {
		name     string
		entities Entities
		want     int
	}{
		{"feature airlines", Entities{Features: []string{"dynamic pricing"}, QueryType: FeatureAirlines}, 5},
		{"feature airlines without features takes all", Entities{QueryType: FeatureAirlines}, 25},
		{"comparison by feature", Entities{Features: []string{"pet transportation"}, QueryType: Comparison}, 5},
		{"comparison without feature keys uses every feature", Entities{Airlines: []string{"delta", "united"}, QueryType: Comparison}, 25},
		{"comparison by airline", Entities{Airlines: []string{"delta", "united"}, Features: []string{"warp drive"}, QueryType: Comparison}, 10},
		{"comparison sample", Entities{Airlines: []string{"qantas"}, Features: []string{"warp drive"}, QueryType: Comparison}, 15},
		{"status limited", Entities{Statuses: []string{"limited"}, QueryType: StatusQuery}, 2},
		{"status yes or pilot", Entities{Statuses: []string{"yes", "pilot"}, QueryType: StatusQuery}, 19},
		{"status without statuses", Entities{QueryType: StatusQuery}, 0},
		{"provider sabre", Entities{Providers: []string{"sabre"}, QueryType: ProviderQuery}, 10},
		{"provider limited to relevant airlines", Entities{Airlines: []string{"united"}, Providers: []string{"sabre"}, QueryType: ProviderQuery}, 5},
		{"provider unknown", Entities{Providers: []string{"travelport"}, QueryType: ProviderQuery}, 0},
		{"general sample", Entities{QueryType: General}, 10},
		{"empty query type is general", Entities{}, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items := build(t, newFakeStore(), tc.entities)
			assert.Len(t, implementationsOf(items), tc.want)
			assert.Equal(t, tc.want, CountImplementations(items))
		})
	}
}

func TestBuild_SamplesKeepStoreOrder(t *testing.T) {
	items := build(t, newFakeStore(), Entities{QueryType: General})
	impls := implementationsOf(items)
	for i, im := range impls {
		assert.Equal(t, uint64(i+1), im.ID)
	}
}

func TestBuild_IsRepeatable(t *testing.T) {
	s := newFakeStore()
	e := Entities{Airlines: []string{"delta"}, Features: []string{"baggage options"}, QueryType: AirlineFeatures}
	assert.Equal(t, build(t, s, e), build(t, s, e))
}

func TestBuild_UnknownReferencesGetPlaceholders(t *testing.T) {
	s := newFakeStore()
	s.implementations = append(s.implementations,
		model.Implementation{ID: 100, AirlineID: 1, FeatureID: 9999, Value: "Yes"},
		model.Implementation{ID: 101, AirlineID: 777, FeatureID: 1, Value: "No"},
	)
	items := build(t, s, Entities{QueryType: StatusQuery, Statuses: []string{"yes", "no"}})

	var missingFeature, missingAirline *EnrichedImplementation
	for _, im := range implementationsOf(items) {
		switch im.ID {
		case 100:
			missingFeature = im
		case 101:
			missingAirline = im
		}
	}
	require.NotNil(t, missingFeature)
	assert.Equal(t, "Unknown Feature (ID: 9999)", missingFeature.FeatureName)
	assert.Equal(t, "Unknown", missingFeature.FeatureCategory)
	assert.Equal(t, "No description", missingFeature.FeatureDescription)
	assert.Equal(t, "American Airlines", missingFeature.AirlineName)

	require.NotNil(t, missingAirline)
	assert.Equal(t, "Unknown Airline (ID: 777)", missingAirline.AirlineName)
	assert.Equal(t, "Unknown", missingAirline.AirlineCodes)
	assert.Equal(t, "Unknown", missingAirline.AirlineProvider)
	assert.Equal(t, "Unknown", missingAirline.AirlineStatus)
	assert.Equal(t, "Dynamic pricing", missingAirline.FeatureName)
}

func TestBuild_EmptyDescriptionBecomesNoDescription(t *testing.T) {
	items := build(t, newFakeStore(), Entities{Features: []string{"unaccompanied minors"}, QueryType: FeatureAirlines})
	impls := implementationsOf(items)
	require.NotEmpty(t, impls)
	assert.Equal(t, "No description", impls[0].FeatureDescription)
}

func TestBuild_StoreFailureFallsBack(t *testing.T) {
	boom := errors.New("connection refused")
	cases := []struct {
		name         string
		breakStore   func(*fakeStore)
		wantAirlines int
		wantFeatures int
	}{
		{"airlines", func(s *fakeStore) { s.airlinesErr = boom }, 0, 5},
		{"features", func(s *fakeStore) { s.featuresErr = boom }, 5, 0},
		{"implementations", func(s *fakeStore) { s.implementationsErr = boom }, 5, 5},
		{"everything", func(s *fakeStore) {
			s.airlinesErr, s.featuresErr, s.implementationsErr = boom, boom, boom
		}, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newFakeStore()
			tc.breakStore(s)
			var items []ContextItem
			require.NotPanics(t, func() {
				items = build(t, s, Entities{QueryType: General})
			})
			require.Len(t, items, 2)
			assert.Zero(t, CountImplementations(items))
			assert.Equal(t, KindAirlines, items[0].Kind)
			assert.Len(t, items[0].Airlines, tc.wantAirlines)
			assert.Equal(t, KindFeatures, items[1].Kind)
			assert.Len(t, items[1].Features, tc.wantFeatures)
		})
	}
}

func TestContextItem_JSONShapes(t *testing.T) {
	items := build(t, newFakeStore(), Entities{
		Airlines: []string{"united"}, Features: []string{"dynamic pricing"}, QueryType: AirlineFeatures,
	})
	raw, err := json.Marshal(items)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, float64(4), decoded[0]["airline_id"])
	assert.Equal(t, float64(1), decoded[0]["feature_id"])
	assert.Equal(t, "Pilot", decoded[0]["value"])
	assert.Equal(t, "United Airlines", decoded[0]["airline_name"])
	assert.Contains(t, decoded[1], "airlines")
	assert.Contains(t, decoded[2], "features")

	empty, err := json.Marshal([]ContextItem{airlinesItem(nil), featuresItem(nil)})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"airlines":[]},{"features":[]}]`, string(empty))
}
