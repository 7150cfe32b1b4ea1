package model

import "time"

// AirlineStatus is the NDC rollout stage of an airline.
type AirlineStatus string

const (
	AirlineProduction  AirlineStatus = "Production"
	AirlinePilot       AirlineStatus = "Pilot"
	AirlineDevelopment AirlineStatus = "Development"
	AirlineInactive    AirlineStatus = "Inactive"
)

// AirlineStatuses lists every accepted status in display order.
var AirlineStatuses = []AirlineStatus{AirlineProduction, AirlinePilot, AirlineDevelopment, AirlineInactive}

// Valid reports whether s is one of the accepted statuses.
func (s AirlineStatus) Valid() bool {
	for _, v := range AirlineStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Airline represents a row in the `airlines` table.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique display name (e.g. "Lufthansa Group").
//  Codes     – comma-joined IATA codes as free text ("LH, OS, SN, LX").
//  Provider  – NDC technology provider (Sabre, Amadeus, ...).
//  Status    – rollout stage.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Airline struct {
	ID        uint64        `json:"id"`
	Name      string        `json:"name"`
	Codes     string        `json:"codes"`
	Provider  string        `json:"provider"`
	Status    AirlineStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// AirlineWithImplementations is an airline together with its implementation
// rows joined to feature details.
type AirlineWithImplementations struct {
	Airline
	Implementations []AirlineImplementation `json:"implementations"`
}

// AirlineImplementation is an implementation row widened with feature fields.
type AirlineImplementation struct {
	Implementation
	FeatureName        string          `json:"feature_name"`
	FeatureCategory    FeatureCategory `json:"feature_category"`
	FeatureDescription *string         `json:"feature_description"`
}
