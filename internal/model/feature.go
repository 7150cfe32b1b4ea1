package model

import "time"

// FeatureCategory groups features the way NDC capability matrices do.
type FeatureCategory string

const (
	CategoryShopping  FeatureCategory = "Shopping"
	CategoryGlobal    FeatureCategory = "Global"
	CategoryBooking   FeatureCategory = "Booking"
	CategoryServicing FeatureCategory = "Servicing"
	CategoryPayment   FeatureCategory = "Payment"
)

var FeatureCategories = []FeatureCategory{CategoryShopping, CategoryGlobal, CategoryBooking, CategoryServicing, CategoryPayment}

func (c FeatureCategory) Valid() bool {
	for _, v := range FeatureCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Feature represents a row in the `features` table.  Description is
// nullable.
type Feature struct {
	ID          uint64          `json:"id"`
	Category    FeatureCategory `json:"category"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// FeatureWithImplementations is a feature together with its implementation
// rows joined to airline details.
type FeatureWithImplementations struct {
	Feature
	Implementations []FeatureImplementation `json:"implementations"`
}

// FeatureImplementation is an implementation row widened with airline fields.
type FeatureImplementation struct {
	Implementation
	AirlineName     string        `json:"airline_name"`
	AirlineCodes    string        `json:"airline_codes"`
	AirlineProvider string        `json:"airline_provider"`
	AirlineStatus   AirlineStatus `json:"airline_status"`
}
