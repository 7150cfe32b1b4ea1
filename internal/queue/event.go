// Package queue defines the catalog change event and the background consumer
// that keeps an audit trail of catalog edits.
package queue

import "time"

// CatalogQueueName is the durable queue catalog.changed events are sent to.
const CatalogQueueName = "catalog.changed"

// Entity and action values carried by CatalogChangedEvent.
const (
	EntityAirline        = "airline"
	EntityFeature        = "feature"
	EntityImplementation = "implementation"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// CatalogChangedEvent is published after every successful catalog write.
// AirlineID and FeatureID are set for implementation events; ID is the row
// id when known (deletes by pair leave it zero).
type CatalogChangedEvent struct {
	EventID    string    `json:"event_id"`
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	ID         uint64    `json:"id,omitempty"`
	AirlineID  uint64    `json:"airline_id,omitempty"`
	FeatureID  uint64    `json:"feature_id,omitempty"`
	Name       string    `json:"name,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
