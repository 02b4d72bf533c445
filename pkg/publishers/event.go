package publishers

import (
	"time"
)

// Event statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Event describes the outcome of one pipeline stage.
type Event struct {
	RunID      string    `json:"run_id"`
	Pipeline   string    `json:"pipeline,omitempty"`
	Stage      string    `json:"stage"`
	Status     string    `json:"status"`
	Items      int       `json:"items,omitempty"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent constructs an Event for the given run and stage.
func NewEvent(runID, stage, status string) Event {
	return Event{
		RunID:      runID,
		Stage:      stage,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	}
}

// attributes returns the routing attributes message brokers receive
// alongside the JSON body.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"run_id": e.RunID,
		"stage":  e.Stage,
		"status": e.Status,
	}
}
