// Package adapter defines the notification boundary for finished runs.
//
// Adapters publish a run summary to downstream systems once the harvest
// settles. The CLI owns adapter lifecycle; users provide configuration
// only.
package adapter

import "context"

// RunCompletedEvent is the payload published when a harvest run finishes.
type RunCompletedEvent struct {
	Version      string `json:"version"`
	EventType    string `json:"event_type"` // always "run_completed"
	RunID        string `json:"run_id"`
	ActorID      string `json:"actor_id,omitempty"`
	Mode         string `json:"mode"`
	Outcome      string `json:"outcome"` // success, search_failure
	ItemsScraped int    `json:"items_scraped"`
	TotalFound   int    `json:"total_found"`
	Timestamp    string `json:"timestamp"` // ISO 8601
	DurationMs   int64  `json:"duration_ms"`
}

// Adapter publishes run completion events to a downstream system.
// Implementations must be safe for single-use per run.
type Adapter interface {
	// Publish sends a run completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *RunCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
