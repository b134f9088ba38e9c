package domain

import "time"

// MessageType represents the type of a realtime bus message.
type MessageType string

// Message types.
const (
	// MessageStatusUpdate carries a per-incident state change
	// (stage started, progress, log line, stage finished).
	MessageStatusUpdate MessageType = "status_update"
	// MessageWorkflowCompleted is the single terminal message of an
	// incident's stream.
	MessageWorkflowCompleted MessageType = "workflow_completed"
	// MessageIncidentListChanged signals that the set of incidents
	// changed (created or archived). Published on the global topic.
	MessageIncidentListChanged MessageType = "incident_list_changed"
)

// Message is a transient realtime event. It is never persisted.
type Message struct {
	Type       MessageType    `json:"type"`
	IncidentID string         `json:"incident_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
