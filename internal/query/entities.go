// Package query turns a free-text question about airline NDC support into a
// small, relevant slice of the catalog for the chat model.  Extraction and
// classification are pure functions of the text; context building reads the
// catalog through the Store interface.
package query

// QueryType is the intent assigned to a question.
type QueryType string

const (
	AirlineFeatures QueryType = "airline_features"
	FeatureAirlines QueryType = "feature_airlines"
	Comparison      QueryType = "comparison"
	StatusQuery     QueryType = "status_query"
	ProviderQuery   QueryType = "provider_query"
	General         QueryType = "general"
)

// QueryTypes lists every intent.
var QueryTypes = []QueryType{AirlineFeatures, FeatureAirlines, Comparison, StatusQuery, ProviderQuery, General}

// Entities is the result of analysing one question.  The five lists hold
// canonical alias keys without duplicates.
type Entities struct {
	Airlines   []string  `json:"airlines"`
	Features   []string  `json:"features"`
	Statuses   []string  `json:"statuses"`
	Categories []string  `json:"categories"`
	Providers  []string  `json:"providers"`
	QueryType  QueryType `json:"queryType"`
	Confidence float64   `json:"confidence"`
}
