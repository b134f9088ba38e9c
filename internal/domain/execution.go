package domain

import "time"

// ExecutionStatus represents the state of one stage execution.
// Transitions are monotonic: idle -> running -> success|error.
type ExecutionStatus string

// Execution statuses.
const (
	ExecutionIdle    ExecutionStatus = "idle"
	ExecutionRunning ExecutionStatus = "running"
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionError   ExecutionStatus = "error"
)

// LogEntry is one line of a stage execution's activity log.
type LogEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Level       string    `json:"level"`
	Message     string    `json:"message"`
	ExecutionID string    `json:"execution_id"`
}

// Log levels.
const (
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// StageExecution is the record of one stage's run against one incident.
// It is owned exclusively by its parent incident; the history index
// keeps value copies only.
type StageExecution struct {
	ExecutionID string `json:"execution_id"`
	StageName   string `json:"stage_name"`
	IncidentID  string `json:"incident_id"`

	Status ExecutionStatus `json:"status"`
	// Progress is 0-100 and non-decreasing within an execution.
	Progress int `json:"progress"`

	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DurationSeconds float64    `json:"duration_seconds"`

	Logs []LogEntry `json:"logs"`

	InputData  map[string]any `json:"input_data,omitempty"`
	OutputData map[string]any `json:"output_data,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`
}

// Clone returns a deep copy of the execution.
func (e *StageExecution) Clone() *StageExecution {
	if e == nil {
		return nil
	}
	c := *e
	c.Logs = append([]LogEntry(nil), e.Logs...)
	if e.CompletedAt != nil {
		t := *e.CompletedAt
		c.CompletedAt = &t
	}
	c.InputData = cloneMap(e.InputData)
	c.OutputData = cloneMap(e.OutputData)
	return &c
}

// cloneMap shallow-copies an opaque payload map. Payload values are
// treated as immutable once attached to an execution.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
