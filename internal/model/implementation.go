package model

import "time"

// Implementation records how one airline supports one feature.  The
// (AirlineID, FeatureID) pair is unique.  Value is a free-text label such
// as "Yes", "No", "Limited" or "Pilot".
type Implementation struct {
	ID        uint64    `json:"id"`
	AirlineID uint64    `json:"airline_id"`
	FeatureID uint64    `json:"feature_id"`
	Value     string    `json:"value"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
