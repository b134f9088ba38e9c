package engine

import (
	"context"
	"fmt"

	"github.com/bissquit/incident-conductor/internal/domain"
)

// Outcome is what a stage produces: an opaque output payload plus the
// incident fields the stage is responsible for. Empty fields leave the
// incident untouched.
type Outcome struct {
	Output map[string]any

	RootCause          string
	Resolution         string
	PageID             string
	TicketID           string
	RemediationApplied []string
}

// Stage is one named, ordered step of the pipeline. Run receives a
// read-only snapshot of the incident and a handle for reporting
// progress and logs; it returns its outcome or an error. A stage error
// marks the execution failed but never aborts the pipeline.
type Stage interface {
	Name() string
	Description() string
	Run(ctx context.Context, inc domain.Incident, h *StageHandle) (Outcome, error)
}

// Registry is the fixed, ordered list of pipeline stages, resolved at
// construction time.
type Registry struct {
	stages []Stage
	byName map[string]Stage
}

// NewRegistry builds a registry from stages in execution order.
func NewRegistry(stages ...Stage) (*Registry, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("registry requires at least one stage")
	}
	byName := make(map[string]Stage, len(stages))
	for _, st := range stages {
		name := st.Name()
		if name == "" {
			return nil, fmt.Errorf("stage with empty name")
		}
		if _, exists := byName[name]; exists {
			return nil, fmt.Errorf("duplicate stage name %q", name)
		}
		byName[name] = st
	}
	return &Registry{stages: stages, byName: byName}, nil
}

// Stages returns the stages in execution order.
func (r *Registry) Stages() []Stage {
	return r.stages
}

// Names returns the stage names in execution order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.stages))
	for i, st := range r.stages {
		names[i] = st.Name()
	}
	return names
}

// Get returns a stage by name.
func (r *Registry) Get(name string) (Stage, bool) {
	st, ok := r.byName[name]
	return st, ok
}

// Len returns the number of stages.
func (r *Registry) Len() int {
	return len(r.stages)
}
