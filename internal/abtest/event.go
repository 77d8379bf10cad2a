// Package abtest implements the experimentation engine: weighted sticky
// variant assignment, typed event tracking with sink fan-out, and on-demand
// result aggregation.
package abtest

import "time"

// EventType classifies a tracked event.
type EventType string

const (
	EventVariantAssigned EventType = "variant_assigned"
	EventPageView        EventType = "page_view"
	EventConversion      EventType = "conversion"
	EventEngagement      EventType = "engagement"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventVariantAssigned, EventPageView, EventConversion, EventEngagement:
		return true
	}
	return false
}

// Event is an immutable tracked fact. The log is append-only and lives for
// the life of the process; only variant assignments are persisted.
type Event struct {
	ID        string         `json:"id"`
	TestID    string         `json:"testId"`
	VariantID string         `json:"variantId"`
	UserID    string         `json:"userId"`
	SessionID string         `json:"sessionId"`
	Type      EventType      `json:"eventType"`
	Value     float64        `json:"eventValue,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Sink receives every tracked event. Implementations must tolerate being
// called concurrently; failures are logged by the tracker and never
// propagated to the caller.
type Sink interface {
	Name() string
	Send(Event) error
}
