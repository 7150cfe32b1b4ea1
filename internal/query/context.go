package query

import (
	"encoding/json"
	"time"

	"github.com/iliyamo/ndc-feature-tracker/internal/model"
)

// Placeholders used when an implementation references a row missing from
// the snapshot.
const (
	unknownField         = "Unknown"
	noDescription        = "No description"
	unknownAirlineFormat = "Unknown Airline (ID: %d)"
	unknownFeatureFormat = "Unknown Feature (ID: %d)"
)

// EnrichedImplementation is an implementation row widened with the
// human-readable fields of its airline and feature.
type EnrichedImplementation struct {
	ID                 uint64    `json:"id"`
	AirlineID          uint64    `json:"airline_id"`
	FeatureID          uint64    `json:"feature_id"`
	Value              string    `json:"value"`
	Notes              *string   `json:"notes"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	AirlineName        string    `json:"airline_name"`
	AirlineCodes       string    `json:"airline_codes"`
	AirlineProvider    string    `json:"airline_provider"`
	AirlineStatus      string    `json:"airline_status"`
	FeatureName        string    `json:"feature_name"`
	FeatureCategory    string    `json:"feature_category"`
	FeatureDescription string    `json:"feature_description"`
}

// ItemKind tells the three context item shapes apart.
type ItemKind int

const (
	KindImplementation ItemKind = iota
	KindAirlines
	KindFeatures
)

// ContextItem is one element of a built context.  Exactly one payload field
// is set, chosen by Kind.
type ContextItem struct {
	Kind           ItemKind
	Implementation *EnrichedImplementation
	Airlines       []model.Airline
	Features       []model.Feature
}

// MarshalJSON flattens implementations and wraps the marker lists as
// {"airlines": [...]} and {"features": [...]}.
func (it ContextItem) MarshalJSON() ([]byte, error) {
	switch it.Kind {
	case KindAirlines:
		list := it.Airlines
		if list == nil {
			list = []model.Airline{}
		}
		return json.Marshal(struct {
			Airlines []model.Airline `json:"airlines"`
		}{list})
	case KindFeatures:
		list := it.Features
		if list == nil {
			list = []model.Feature{}
		}
		return json.Marshal(struct {
			Features []model.Feature `json:"features"`
		}{list})
	default:
		return json.Marshal(it.Implementation)
	}
}

func implementationItem(e EnrichedImplementation) ContextItem {
	return ContextItem{Kind: KindImplementation, Implementation: &e}
}

func airlinesItem(a []model.Airline) ContextItem { return ContextItem{Kind: KindAirlines, Airlines: a} }

func featuresItem(f []model.Feature) ContextItem { return ContextItem{Kind: KindFeatures, Features: f} }

// CountImplementations reports how many implementation items items holds.
func CountImplementations(items []ContextItem) int {
	n := 0
	for _, it := range items {
		if it.Kind == KindImplementation {
			n++
		}
	}
	return n
}
