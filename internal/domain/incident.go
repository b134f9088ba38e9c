// Package domain contains the shared types of the incident workflow engine.
package domain

import "time"

// Severity represents the severity level of an incident.
type Severity string

// Severity levels.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// IsValid checks if the severity is valid.
func (s Severity) IsValid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh || s == SeverityCritical
}

// Status represents the coarse lifecycle state of an incident.
type Status string

// Incident statuses.
const (
	StatusOpen              Status = "open"
	StatusResolved          Status = "resolved"
	StatusPartiallyResolved Status = "partially_resolved"
	StatusFailed            Status = "failed"
)

// WorkflowStatus represents the state of an incident's pipeline run.
type WorkflowStatus string

// Workflow statuses.
const (
	WorkflowInProgress WorkflowStatus = "in_progress"
	WorkflowCompleted  WorkflowStatus = "completed"
	WorkflowFailed     WorkflowStatus = "failed"
)

// IsTerminal reports whether the workflow reached a terminal state.
func (w WorkflowStatus) IsTerminal() bool {
	return w == WorkflowCompleted || w == WorkflowFailed
}

// Incident represents one tracked problem flowing through the pipeline.
//
// While WorkflowStatus is in_progress the incident lives in the store's
// active set and is mutated only by its own pipeline run; once terminal
// it moves to history and becomes read-only.
type Incident struct {
	ID              string   `json:"id"`
	WorkflowID      string   `json:"workflow_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Severity        Severity `json:"severity"`
	IncidentType    string   `json:"incident_type"`
	AffectedSystems []string `json:"affected_systems"`

	Status          Status         `json:"status"`
	WorkflowStatus  WorkflowStatus `json:"workflow_status"`
	CurrentStage    string         `json:"current_stage"`
	CompletedStages []string       `json:"completed_stages"`
	FailedStages    []string       `json:"failed_stages"`

	// Executions maps stage name to its execution record, created
	// lazily when the stage starts.
	Executions map[string]*StageExecution `json:"executions"`

	RootCause          string   `json:"root_cause"`
	Resolution         string   `json:"resolution"`
	PageID             string   `json:"page_id"`
	TicketID           string   `json:"ticket_id"`
	RemediationApplied []string `json:"remediation_applied"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the incident, including executions.
func (i *Incident) Clone() *Incident {
	if i == nil {
		return nil
	}
	c := *i
	c.AffectedSystems = append([]string(nil), i.AffectedSystems...)
	c.CompletedStages = append([]string(nil), i.CompletedStages...)
	c.FailedStages = append([]string(nil), i.FailedStages...)
	c.RemediationApplied = append([]string(nil), i.RemediationApplied...)
	if i.Executions != nil {
		c.Executions = make(map[string]*StageExecution, len(i.Executions))
		for name, exec := range i.Executions {
			c.Executions[name] = exec.Clone()
		}
	}
	return &c
}
